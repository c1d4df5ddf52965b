package steps

import "strings"

func containsString(s, substr string) bool {
	return strings.Contains(s, substr)
}
