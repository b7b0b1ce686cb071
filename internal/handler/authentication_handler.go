package handler

import (
	"net/http"

	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/model/requestresponse"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/security"
	"visa-advisory-portal/internal/util"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Register godoc
// @Summary Register a customer account
// @Description Creates a customer and an empty client record, returns a token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Account data"
// @Success 201 {object} model.TokensPair
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Email already registered"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /register [post]
func (h *AuthenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.AuthenticationService.Register(r.Context(), req, r.UserAgent(), clientIP(r))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, tokens)
}

// Login godoc
// @Summary Authenticate
// @Description Exchanges email and password for an access/refresh token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Credentials"
// @Success 200 {object} model.TokensPair
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Invalid credentials"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Email, req.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken godoc
// @Summary Rotate the token pair
// @Description Needs the (possibly expired) access token in the Authorization header and the refresh token issued with it
// @Tags Authentication
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body requestresponse.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} model.TokensPair
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := security.BearerToken(r)
	if !ok {
		util.WriteError(w, apperror.ErrUnauthorized)
		return
	}

	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.AuthenticationService.RefreshToken(r.Context(), r.UserAgent(), clientIP(r), accessToken, req.RefreshToken)
	if err != nil {
		util.WriteError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, tokens)
}

// Logout godoc
// @Summary Close the current session
// @Tags Authentication
// @Security ApiKeyAuth
// @Success 204
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), claims.RefreshTokenUUID); err != nil {
		util.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current identity
// @Tags Authentication
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /me [get]
func (h *AuthenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, err := h.AuthenticationService.CurrentUser(r.Context(), claims.UserUUID)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.CurrentUserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	})
}
