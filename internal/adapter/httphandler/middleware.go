package httphandler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const SessionHeader = "X-Session-ID"

type sessionKey struct{}

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// Session puts the request session ID into the request context. Requests
// without the session header start a new session.
//
// The session ID is always echoed in the response header.
func Session(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(SessionHeader, id)
		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(hf)
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
