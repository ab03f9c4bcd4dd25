// Package health exposes the liveness endpoint.
package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/hello-world/internal/platform/config"
)

// StatusHealthy is the only status the service reports while it can answer requests.
const StatusHealthy = "healthy"

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status" doc:"Service status" example:"healthy"`
}

// Output wraps Response for huma.
type Output struct {
	Body Response
}

// Register adds GET /health to the API. The body is negotiated between JSON and CBOR.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        config.HealthPath,
		Summary:     "Liveness check",
		Tags:        []string{"health"},
	}, func(_ context.Context, _ *struct{}) (*Output, error) {
		return &Output{Body: Response{Status: StatusHealthy}}, nil
	})
}
