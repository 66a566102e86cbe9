package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeKey is the comparison form of a room type key or alias.
func NormalizeKey(key string) string {
	return strings.ToLower(TrimAndNormalize(key))
}

func NormalizeRoomNumber(room string) string {
	return strings.ToUpper(strings.Join(strings.Fields(room), ""))
}
