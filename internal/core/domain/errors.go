package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrClientNotFound = errors.New("client not found")
var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrPhoneTaken = errors.New("telephone already registered")

// Post-commit side-effect failures. These never reach the creation response;
// they surface through logs and metrics only.
var ErrQRGeneration = errors.New("qr code generation failed")
var ErrNotification = errors.New("notification delivery failed")
var ErrImageUpload = errors.New("image upload failed")

// ValidationError carries per-field messages for a rejected input payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
