package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a workflow or graph name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// graphIDRegex matches stored graph identifiers: UUIDs and other simple
// URL-safe tokens. Path separators and dots are rejected so an identifier
// can never escape its URL segment or cache directory.
var graphIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateGraphID validates a stored graph identifier as used in URL paths
// and cache keys.
func ValidateGraphID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "graph id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "graph id too long (max 128 characters)")
	}

	if !graphIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid graph id: %q", id)
	}

	return nil
}

