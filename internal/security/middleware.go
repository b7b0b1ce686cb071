package security

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/util"
)

type contextKey string

const UserContextKey contextKey = "user"

// RefreshTokenFinder : lookup used to reject access tokens whose session was closed
type RefreshTokenFinder interface {
	FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error)
}

func JWTMiddleware(jwtService *JWTService, tokens RefreshTokenFinder) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				util.WriteError(w, apperror.ErrUnauthorized)
				return
			}

			claims, err := jwtService.ValidateJWT(token)
			if err != nil {
				zap.L().Debug("rejected access token", zap.Error(err))
				util.WriteError(w, apperror.WithMessage(apperror.ErrUnauthorized, "invalid or expired token"))
				return
			}

			refreshToken, err := tokens.FindByUUID(r.Context(), claims.RefreshTokenUUID)
			if err != nil || refreshToken.Used {
				util.WriteError(w, apperror.WithMessage(apperror.ErrUnauthorized, "session closed"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin : must run after JWTMiddleware
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		if err != nil {
			util.WriteError(w, err)
			return
		}
		if !claims.IsAdmin() {
			util.WriteError(w, apperror.WithMessage(apperror.ErrForbidden, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, apperror.ErrUnauthorized
	}
	return claims, nil
}
