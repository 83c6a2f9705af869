package sandbox

import "strings"

// Sanitize strips the markdown code fences generation collaborators wrap
// around source text. Only fences at the very start and end of the text are
// removed; fence-shaped lines inside the script (inside a template literal,
// say) are left alone. Sanitizing already-clean source is a no-op.
func Sanitize(source string) string {
	source = strings.TrimSpace(source)

	if strings.HasPrefix(source, "```") {
		rest := source[3:]
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			if isLanguageTag(rest[:nl]) {
				source = rest[nl+1:]
			}
		} else if isLanguageTag(rest) {
			source = ""
		}
	}

	if strings.HasSuffix(source, "```") {
		source = source[:len(source)-3]
	}

	return strings.TrimSpace(source)
}

func isLanguageTag(line string) bool {
	switch strings.TrimSpace(line) {
	case "", "javascript", "js":
		return true
	}
	return false
}
