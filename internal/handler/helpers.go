package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/security"
	"visa-advisory-portal/internal/util"
)

// decodeJSON : decodes and validates the body, the error response is already written when it fails
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		appErr := apperror.Wrap(apperror.ErrValidation, err, "invalid request body")
		util.WriteError(w, appErr)
		return appErr
	}
	if err := util.ValidateStruct(target); err != nil {
		util.WriteError(w, err)
		return err
	}
	return nil
}

// requireClaims : the error response is already written when it fails
func requireClaims(w http.ResponseWriter, r *http.Request) (*security.Claims, bool) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.WriteError(w, err)
		return nil, false
	}
	return claims, true
}

// clientIP : first X-Forwarded-For hop, else the remote address without port
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
