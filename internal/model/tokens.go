package model

import "time"

type RefreshToken struct {
	UUID      string    `db:"uuid"`
	UserUUID  string    `db:"user_uuid"`
	TokenHash string    `db:"token_hash"`
	ExpireAt  time.Time `db:"expire_at"`
	Used      bool      `db:"used"`
	UserAgent string    `db:"user_agent"`
	IpAddress string    `db:"ip_address"`
	CreatedAt time.Time `db:"created_at"`
}

// TokensPair : access and refresh tokens issued together
// swagger:model
type TokensPair struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
	TokenType    string `json:"token_type" example:"bearer"`
	Role         Role   `json:"role" example:"customer"`
}
