package ports

import (
	"context"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
)

type AuthenticationService interface {
	Register(ctx context.Context, request requestresponse.RegisterRequest, userAgent, ipAddress string) (*model.TokensPair, error)
	Login(ctx context.Context, email, password, userAgent, ipAddress string) (*model.TokensPair, error)
	RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshTokenUUID string) error
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}
