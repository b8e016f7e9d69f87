package usecase

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	return joinValidation(v)
}

// ValidateCredentials checks that every required field is present and not
// blank. Runs before any request is made.
func ValidateCredentials(required []string, creds map[string]string) []ValidationError {
	var errors []ValidationError

	for _, field := range required {
		if strings.TrimSpace(creds[field]) == "" {
			errors = append(errors, ValidationError{field, "is required"})
		}
	}

	return errors
}

func joinValidation(verrs []ValidationError) string {
	parts := make([]string, len(verrs))
	for i, e := range verrs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
