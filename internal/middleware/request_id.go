package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation id, honoring one supplied
// by the client, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r)
	})
}
