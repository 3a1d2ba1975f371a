package middleware

import (
	"mime"
	"net/http"

	"github.com/weatherdash/weatherdash/internal/api/models"
)

// RequireJSON rejects POST, PUT and PATCH requests whose body is declared
// as anything other than JSON. A missing Content-Type is allowed.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					problem := models.NewUnsupportedMediaType(GetRequestID(r.Context()), "Content-Type must be application/json")
					problem.Instance = r.URL.Path
					problem.Write(w)
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
