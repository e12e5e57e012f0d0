package lang

import "github.com/sahilm/fuzzy"

// SuggestName returns the closest registered name to typo among
// candidates (command names, keymap names, key names, ...), or "" if
// candidates is empty. Used to annotate "unknown function" / "unknown
// keymap" diagnostics with a "did you mean" hint.
func SuggestName(typo string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	matches := fuzzy.Find(typo, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
