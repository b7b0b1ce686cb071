package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"visa-advisory-portal/internal/apperror"
)

// LogError : logs the failure and returns it wrapped with the message
func LogError(message string, err error) error {
	zap.L().Error(message, zap.Error(err))
	return fmt.Errorf("%s: %w", message, err)
}

// HandleError : writes an error body with an explicit status
func HandleError(w http.ResponseWriter, message string, statusCode int) {
	WriteError(w, &apperror.Error{
		Code:    http.StatusText(statusCode),
		Message: message,
		Status:  statusCode,
	})
}

// WriteError : maps any error onto its apperror status and body
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperror.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}

	WriteJSON(w, appErr.Status, struct {
		Error *apperror.Error `json:"error"`
	}{Error: appErr})
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}
