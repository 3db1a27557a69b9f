package dto

import v0 "ai-appbuilder-be/pkg/v0"

const (
	APIKeyMissing = "API_KEY_MISSING"
	APIKeyInvalid = "API_KEY_INVALID"
)

type ValidateAPIKeyResponse struct {
	Valid bool           `json:"valid"`
	Error string         `json:"error,omitempty"`
	User  *v0.UserDetail `json:"user,omitempty"`
}
