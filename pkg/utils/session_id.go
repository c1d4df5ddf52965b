package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// GenerateSessionID creates a short, human-readable session ID.
// Format: {operation-in-kebab-case}-{8charHexUUID}
//
// Example:
//   - Input: operation="ResolveRequirementsCommand"
//   - Output: "resolve-requirements-a3f8e2b1"
//
// Trailing "Command" and "Query" suffixes are dropped. An empty operation
// produces "session-{8charHexUUID}".
func GenerateSessionID(operation string) string {
	prefix := kebabOperation(operation)
	if prefix == "" {
		prefix = "session"
	}
	return prefix + "-" + generateShortUUID()
}

// kebabOperation normalises an operation or request type name:
//   - "ResolveRequirementsCommand" -> "resolve-requirements"
//   - "pre-task-setup" -> "pre-task-setup"
//   - "Ledger Show" -> "ledger-show"
func kebabOperation(operation string) string {
	operation = strings.TrimSpace(operation)
	for _, suffix := range []string{"Command", "Query"} {
		if len(operation) > len(suffix) && strings.HasSuffix(operation, suffix) {
			operation = strings.TrimSuffix(operation, suffix)
			break
		}
	}

	var b strings.Builder
	prevLower := false
	for _, r := range operation {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = true
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			prevLower = false
		}
	}
	return strings.Trim(b.String(), "-")
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
