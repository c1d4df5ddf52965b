package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKebabOperation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ResolveRequirementsCommand", "resolve-requirements"},
		{"GetLedgerQuery", "get-ledger"},
		{"pre-task-setup", "pre-task-setup"},
		{"Ledger Show", "ledger-show"},
		{"Command", "command"},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, kebabOperation(tt.in))
		})
	}
}

func TestGenerateSessionID(t *testing.T) {
	// Act
	a := GenerateSessionID("ResolveRequirementsCommand")
	b := GenerateSessionID("ResolveRequirementsCommand")
	empty := GenerateSessionID("")

	// Assert
	assert.Regexp(t, regexp.MustCompile(`^resolve-requirements-[0-9a-f]{8}$`), a)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, regexp.MustCompile(`^session-[0-9a-f]{8}$`), empty)
}
