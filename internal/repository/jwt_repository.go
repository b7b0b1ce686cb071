package repository

import (
	"context"
	"fmt"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
)

type JWTRepository struct {
	*config.Database
}

func NewJWTRepository(database *config.Database) *JWTRepository {
	return &JWTRepository{database}
}

// SaveRefreshToken : stores the hashed refresh token of a new session
func (r *JWTRepository) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (uuid, user_uuid, token_hash, expire_at, used, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		refreshToken.UUID,
		refreshToken.UserUUID,
		refreshToken.TokenHash,
		refreshToken.ExpireAt,
		refreshToken.Used,
		refreshToken.UserAgent,
		refreshToken.IpAddress,
	)
	if err != nil {
		return mapError("[JWTRepo] insert refresh token", err)
	}

	return nil
}

// MarkRefreshTokenUsedByUUID : single use, a second call fails
func (r *JWTRepository) MarkRefreshTokenUsedByUUID(ctx context.Context, refreshTokenUUID string) error {
	query := `UPDATE refresh_tokens SET used = TRUE WHERE uuid = $1 AND used = FALSE`

	result, err := r.DB.ExecContext(ctx, query, refreshTokenUUID)
	if err != nil {
		return mapError("[JWTRepo] mark refresh token used", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return mapError("[JWTRepo] rows affected", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("[JWTRepo] refresh token %s not found or already used", refreshTokenUUID)
	}

	return nil
}

func (r *JWTRepository) FindByUUID(ctx context.Context, refreshTokenUUID string) (*model.RefreshToken, error) {
	query := `
		SELECT uuid, user_uuid, token_hash, expire_at, used, user_agent, ip_address, created_at
		FROM refresh_tokens WHERE uuid = $1
	`

	var refreshToken model.RefreshToken
	if err := r.DB.GetContext(ctx, &refreshToken, query, refreshTokenUUID); err != nil {
		return nil, mapError("[JWTRepo] find refresh token", err)
	}

	return &refreshToken, nil
}
