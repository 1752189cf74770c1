package dictflag

import "strings"

// lookupPath descends a nested map[string]any along dot-separated path
// segments and returns the value at the final segment.
func lookupPath(nested map[string]any, path string) (any, bool) {
	segments := strings.Split(path, Separator)
	current := any(nested)

	for _, segment := range segments {
		currentMap, isMap := current.(map[string]any)
		if !isMap {
			return nil, false
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil, false
		}
		current = value
	}

	return current, true
}

// subtree returns the nested map at basePath, or the root map if basePath is
// empty. The second return value is false when the path does not exist or
// does not refer to a map.
func subtree(nested map[string]any, basePath string) (map[string]any, bool) {
	basePath = strings.TrimSuffix(basePath, Separator)
	if basePath == "" {
		return nested, true
	}

	value, found := lookupPath(nested, basePath)
	if !found {
		return nil, false
	}

	m, isMap := value.(map[string]any)
	return m, isMap
}

// isValidKeySegment checks if a single key is a valid flag name part.
// Keys are sequences of ASCII letters, ASCII digits, underscores, and
// dashes (A-Za-z0-9_-); dots are reserved as the namespace separator.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}
