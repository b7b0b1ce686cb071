package ports

import (
	"context"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/security"
)

type JWTRepositoryInterface interface {
	FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error)
	MarkRefreshTokenUsedByUUID(ctx context.Context, uuid string) error
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
}

type JWTServiceInterface interface {
	GenerateAccessRefreshTokens(user *model.User) (*model.TokensPair, *model.RefreshToken, error)
	ValidateJWT(tokenString string) (*security.Claims, error)
	ParseAccessToken(tokenString string) (*security.Claims, error)
}
