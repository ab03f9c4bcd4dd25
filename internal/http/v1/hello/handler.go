// Package hello serves the static HTML greeting.
package hello

import (
	"io"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

const (
	// Body is the exact response payload, trailing newline included.
	Body = "<h1>Hello, World!</h1>\n"
	// ContentType is sent verbatim, without a charset parameter.
	ContentType = "text/html"
	// DefaultPath is used when Register is given an empty path.
	DefaultPath = "/hello"
)

// Handler writes Body as text/html. It reads nothing from the request and
// leaves the status implicit (200). A failed write aborts the response through
// http.ErrAbortHandler; recovery is left to the server.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", ContentType)
	if _, err := io.WriteString(w, Body); err != nil {
		panic(http.ErrAbortHandler)
	}
}

// headHandler answers HEAD with the GET headers and the length Body would have.
func headHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(Body)))
}

// Register mounts Handler at GET path, its bodiless HEAD twin, and documents
// the GET operation in the OpenAPI spec.
func Register(router chi.Router, api huma.API, path string) {
	if path == "" {
		path = DefaultPath
	}
	router.Get(path, Handler)
	router.Head(path, headHandler)

	api.OpenAPI().AddOperation(&huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        path,
		Summary:     "Static HTML greeting",
		Tags:        []string{"hello"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Greeting markup",
				Content: map[string]*huma.MediaType{
					ContentType: {
						Schema:  &huma.Schema{Type: huma.TypeString},
						Example: Body,
					},
				},
			},
		},
	})
}
