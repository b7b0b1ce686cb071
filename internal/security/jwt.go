package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/util"
)

type Claims struct {
	UserUUID         string     `json:"user_uuid"`
	Email            string     `json:"email"`
	Role             model.Role `json:"role"`
	RefreshTokenUUID string     `json:"refresh_token_id"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

type JWTService struct {
	*config.JWTConfig
	now func() time.Time
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{JWTConfig: cfg, now: time.Now}
}

// GenerateAccessRefreshTokens : signs an access token bound to a freshly generated refresh token
func (service *JWTService) GenerateAccessRefreshTokens(user *model.User) (*model.TokensPair, *model.RefreshToken, error) {
	refreshToken, refreshTokenStr, err := GenerateRefreshToken()
	if err != nil {
		return nil, nil, util.LogError("generate refresh token", err)
	}

	refreshTTL, err := time.ParseDuration(service.RefreshTokenTTL)
	if err != nil {
		return nil, nil, util.LogError("parse refresh token ttl", err)
	}
	accessTTL, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return nil, nil, util.LogError("parse access token ttl", err)
	}

	now := service.now()
	refreshToken.UserUUID = user.ID
	refreshToken.ExpireAt = now.Add(refreshTTL)

	claims := Claims{
		UserUUID:         user.ID,
		Email:            user.Email,
		Role:             user.Role,
		RefreshTokenUUID: refreshToken.UUID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    service.Issuer,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(service.SecretKey))
	if err != nil {
		return nil, nil, util.LogError("sign access token", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenStr,
		TokenType:    "bearer",
		Role:         user.Role,
	}, refreshToken, nil
}

// GenerateRefreshToken : the plain value goes to the client, only its bcrypt hash is stored
func GenerateRefreshToken() (*model.RefreshToken, string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, "", util.LogError("read random bytes", err)
	}
	refreshTokenStr := base64.StdEncoding.EncodeToString(tokenBytes)

	hashedToken, err := bcrypt.GenerateFromPassword([]byte(refreshTokenStr), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", util.LogError("hash refresh token", err)
	}

	return &model.RefreshToken{
		UUID:      uuid.New().String(),
		TokenHash: string(hashedToken),
	}, refreshTokenStr, nil
}

// ValidateJWT : full validation including expiry
func (service *JWTService) ValidateJWT(tokenString string) (*Claims, error) {
	return service.parse(tokenString)
}

// ParseAccessToken : checks the signature but accepts an expired token, used by refresh
func (service *JWTService) ParseAccessToken(tokenString string) (*Claims, error) {
	return service.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (service *JWTService) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithTimeFunc(service.now))

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(service.SecretKey), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", util.LogError("hash password", err)
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
