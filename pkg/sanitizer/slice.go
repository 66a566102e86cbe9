package sanitizer

import "strings"

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

func NormalizeRoomNumbers(rooms []string) []string {
	return NormalizeStringSlice(rooms, NormalizeRoomNumber)
}

// NormalizeAliases keeps the first spelling of aliases that differ only in case.
func NormalizeAliases(aliases []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = TrimAndNormalize(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, a)
	}
	return result
}
