package middleware

import (
	"net/http"

	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/response"
	"github.com/rs/zerolog/log"
)

// Recovery middleware recovers from panics
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("path", r.URL.Path).
					Msg("Panic recovered")

				response.Error(w, apperror.New("Something went wrong", http.StatusInternalServerError))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
