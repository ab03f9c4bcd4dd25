package middleware

import (
	"net/http"
	"strings"
)

// Vary appends fields to the Vary response header, skipping any already listed.
func Vary(fields ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, f := range fields {
				if !listsField(h.Values("Vary"), f) {
					h.Add("Vary", f)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func listsField(values []string, field string) bool {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p == "*" || strings.EqualFold(p, field) {
				return true
			}
		}
	}
	return false
}
