package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrUnreachable      = errors.New("speaker unreachable")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrTimeout          = errors.New("request timeout")
	ErrFileNotFound     = errors.New("audio file not found")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrNotConfigured    = errors.New("speaker not configured")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// DahuaError wraps an error with a user-friendly suggestion.
type DahuaError struct {
	Err        error
	Suggestion string
}

func (e *DahuaError) Error() string {
	return e.Err.Error()
}

func (e *DahuaError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &DahuaError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var dahuaErr *DahuaError
	if errors.As(err, &dahuaErr) && dahuaErr.Suggestion != "" {
		return dahuaErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Authentication errors
	if errors.Is(err, ErrAuthFailed) || strings.Contains(errStr, "username or password") ||
		strings.Contains(errStr, "invalid auth") {
		return "Check speaker.username and speaker.password in your config"
	}

	// Configuration errors
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrConfigNotFound) {
		return "Run 'dahuactl config init' to set up the speaker connection"
	}

	if errors.Is(err, ErrInvalidConfig) {
		return "Run 'dahuactl config show' to inspect the current configuration"
	}

	// Network errors
	if errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "no route to host") {
		return "Check the speaker is powered (PoE) and reachable on the network"
	}

	// File errors
	if errors.Is(err, ErrFileNotFound) {
		return "Run 'dahuactl files' to list audio files on the speaker"
	}

	if errors.Is(err, ErrUnsupportedMedia) {
		return "The speaker only accepts MP3 files"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
