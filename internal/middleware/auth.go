package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/auth"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/response"
	"gorm.io/gorm"
)

type contextKey string

const principalKey contextKey = "principal"

// AccountFinder resolves an account of one kind by id
type AccountFinder func(ctx context.Context, id uuid.UUID) (models.Account, error)

// Authenticate gates a route behind a bearer token of one account kind.
// A valid token for the wrong kind is rejected with 403; a token issued
// before the account's last password change is rejected with 401.
func Authenticate(tokens *auth.TokenService, kind string, find AccountFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get("Authorization")
			if !strings.HasPrefix(authorization, "Bearer ") {
				response.Error(w, apperror.Unauthorized("Access denied, No token provided"))
				return
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))

			subjectID, issuedAt, err := tokens.Verify(tokenString)
			if err != nil {
				response.Error(w, apperror.Unauthorized("Invalid token, Please login again"))
				return
			}

			account, err := find(r.Context(), subjectID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					response.Error(w, apperror.Forbidden(fmt.Sprintf(
						"There is no %s with this token, Please login as %s", kind, kind,
					)))
					return
				}
				response.Error(w, err)
				return
			}

			// The password-change timestamp carries a one-second negative
			// skew, so a token issued in the same second as the change is
			// already stale.
			if account.SecretChangedAt().Unix() > issuedAt.Unix() {
				response.Error(w, apperror.Unauthorized("This user changed his password, Please login again"))
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated account from context
func GetPrincipal(ctx context.Context) (models.Account, bool) {
	account, ok := ctx.Value(principalKey).(models.Account)
	return account, ok
}

// BindSelf copies the principal's id into the "id" URL param so
// self-service routes can reuse the generic by-id handlers.
func BindSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok {
			response.Error(w, apperror.Unauthorized("Access denied, No token provided"))
			return
		}

		rctx := chi.RouteContext(r.Context())
		rctx.URLParams.Add("id", principal.AccountID().String())
		next.ServeHTTP(w, r)
	})
}
