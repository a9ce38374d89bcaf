package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// maxDocumentBytes caps uploaded document text well above the prompt
// truncation budget so oversized bodies are rejected early.
const maxDocumentBytes = 1 << 20 // 1 MiB

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateDocumentText checks the analyze request body text
func ValidateDocumentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("documentText is required")
	}
	if len(text) > maxDocumentBytes {
		return fmt.Errorf("documentText exceeds %d bytes", maxDocumentBytes)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePageSize validates page size with the same bounds as limit
func ValidatePageSize(size int) int {
	return ValidateLimit(size)
}
