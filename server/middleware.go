package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/urfave/negroni"
)

// RequestID tags every request and its response with an X-Request-ID so
// log lines can be correlated across services.
func RequestID() negroni.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next(w, r)
	}
}
