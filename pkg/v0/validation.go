package v0

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MaxMessageLength     = 10000
	MaxProjectNameLength = 100
)

// All checks here run before any request leaves the process.

func ValidateMessage(message string) error {
	if err := validation.Validate(strings.TrimSpace(message),
		validation.Required.Error("Message cannot be empty"),
	); err != nil {
		return NewValidationError(err.Error())
	}
	if err := validation.Validate(message,
		validation.RuneLength(0, MaxMessageLength).Error(fmt.Sprintf("Message is too long (max %d characters)", MaxMessageLength)),
	); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

func ValidateProjectName(name string) error {
	if err := validation.Validate(strings.TrimSpace(name),
		validation.Required.Error("Project name cannot be empty"),
	); err != nil {
		return NewValidationError(err.Error())
	}
	if err := validation.Validate(name,
		validation.RuneLength(0, MaxProjectNameLength).Error(fmt.Sprintf("Project name is too long (max %d characters)", MaxProjectNameLength)),
	); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// ValidateID checks a generic identifier; field names the id in the message.
func ValidateID(field, id string) error {
	if err := validation.Validate(strings.TrimSpace(id),
		validation.Required.Error(fmt.Sprintf("%s is required", field)),
	); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

func ValidateURL(raw string) error {
	if err := validation.Validate(raw,
		validation.Required.Error("URL is required"),
		is.RequestURL.Error(fmt.Sprintf("Invalid URL: %s", raw)),
	); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

func validateAttachments(attachments []Attachment) error {
	for _, a := range attachments {
		if err := ValidateURL(a.URL); err != nil {
			return err
		}
	}
	return nil
}
