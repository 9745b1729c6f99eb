package wake

import "strings"

// Matches reports whether text contains any of the trigger phrases,
// case-insensitively. Empty text never matches; blank triggers are skipped.
func Matches(text string, triggers []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, trigger := range triggers {
		t := strings.ToLower(strings.TrimSpace(trigger))
		if t == "" {
			continue
		}
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
