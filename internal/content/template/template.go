// Package template extracts {name} placeholders from content prompts and
// renders previews. Variables are always derived from the prompt text.
package template

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// ExtractVariables returns the distinct placeholder names in prompt, in order of first appearance.
func ExtractVariables(prompt string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(prompt, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Render substitutes every placeholder that has a value in values. Placeholders
// without a value are left verbatim. Substituted text is never rescanned, so a
// value containing "{x}" stays literal.
func Render(prompt string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(prompt, func(match string) string {
		name := match[1 : len(match)-1]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}

// Missing lists the placeholders of prompt that values does not cover.
func Missing(prompt string, values map[string]string) []string {
	var missing []string
	for _, name := range ExtractVariables(prompt) {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
