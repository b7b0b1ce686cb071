package requestresponse

import "visa-advisory-portal/internal/model"

// RegisterRequest : new customer account
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email" example:"client@example.com"`
	Password  string `json:"password" validate:"required,min=8" example:"P@ssw0rd123"`
	FirstName string `json:"first_name" validate:"omitempty,max=120" example:"Ana"`
	LastName  string `json:"last_name" validate:"omitempty,max=120" example:"Pérez"`
	Phone     string `json:"phone" validate:"omitempty,max=40" example:"+51 999 999 999"`
}

// LoginRequest : credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"client@example.com"`
	Password string `json:"password" validate:"required" example:"P@ssw0rd123"`
}

// RefreshTokenRequest : exchange a refresh token for a new pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"vcSi0369y1I62wOpxZFpgZ..."`
}

// CurrentUserResponse : identity behind the bearer token
type CurrentUserResponse struct {
	ID    string     `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Email string     `json:"email" example:"client@example.com"`
	Role  model.Role `json:"role" example:"customer"`
}
