package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/hello-world/internal/http/health"
	"github.com/janisto/hello-world/internal/http/v1/hello"
)

// Register wires all HTTP routes. The hello handler is mounted on the plain
// router at helloPath; health goes through huma for content negotiation.
func Register(router chi.Router, api huma.API, helloPath string) {
	health.Register(api)
	hello.Register(router, api, helloPath)
}
