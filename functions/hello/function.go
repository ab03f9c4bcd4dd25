// Package hello exposes the greeting as an HTTP Cloud Function.
package hello

import (
	"io"
	"net/http"
	"strconv"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

// Body and ContentType match the main service's hello handler byte for byte.
const (
	Body        = "<h1>Hello, World!</h1>\n"
	ContentType = "text/html"
)

func init() {
	functions.HTTP("Hello", helloHandler)
}

// helloHandler mirrors the server route: GET gets Body, HEAD only its headers,
// any other method 405.
func helloHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodHead:
		w.Header().Set("Content-Type", ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(Body)))
		return
	default:
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", ContentType)
	if _, err := io.WriteString(w, Body); err != nil {
		panic(http.ErrAbortHandler)
	}
}
