package models

import (
	"strings"
)

// MaxInputLength is the maximum length of sanitized input content.
const MaxInputLength = 1000

// ValidateInput checks that input data is acceptable for the given modality.
// Text input must be non-empty after trimming; voice and image input only
// need to be present.
func ValidateInput(inputType InputType, content string) bool {
	switch inputType {
	case InputTypeText:
		return strings.TrimSpace(content) != ""
	case InputTypeVoice, InputTypeImage:
		return content != ""
	default:
		return false
	}
}

// Sanitize strips control characters from text and truncates it for safe
// storage. Truncated input is marked with a trailing ellipsis.
func Sanitize(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxInputLength
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}

	// Truncate by runes so multi-byte scripts are never cut mid-character.
	sanitized := []rune(b.String())
	if len(sanitized) > maxLength {
		return strings.TrimSpace(string(sanitized[:maxLength])) + "..."
	}
	return strings.TrimSpace(string(sanitized))
}
