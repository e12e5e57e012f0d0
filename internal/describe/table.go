// Package describe renders a compiled Setting for humans: a table view of
// one keymap's bindings for the CLI --dump-keymap flag, and a unified diff
// between successive Setting.Describe() dumps for reload logging. Both
// operate on Setting.Describe()'s deterministic text rather than walking
// internal/model's unexported traversal state, so the table and the diff
// always agree with each other and with what a reload actually logs.
package describe

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

// Table renders the named keymap's modifier table and key bindings as a
// human-readable table, for the --dump-keymap CLI flag.
func Table(s *model.Setting, keymapName string) (string, error) {
	km, ok := s.FindKeymapByName(keymapName)
	if !ok {
		return "", fmt.Errorf("describe: no such keymap %q", keymapName)
	}

	section, err := keymapSection(s.Describe(), keymapName)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Keymap: %s", km.Name)
	if km.Parent != nil {
		fmt.Fprintf(&b, " (parent: %s)", km.Parent.Name)
	}
	b.WriteByte('\n')

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Kind", "Key/Mod", "Binding"})
	table.SetAutoWrapText(false)

	for _, line := range section {
		kind, key, binding, ok := splitDescribeLine(line)
		if !ok {
			continue
		}
		table.Append([]string{kind, key, binding})
	}
	table.Render()

	return b.String(), nil
}

// keymapSection returns the body lines (indented "  mod ..."/"  key ..."/
// "  default = ...") belonging to the named keymap's section of a
// Setting.Describe() dump.
func keymapSection(dump, name string) ([]string, error) {
	lines := strings.Split(dump, "\n")
	header := "keymap " + name
	var section []string
	inSection := false
	for _, line := range lines {
		if strings.HasPrefix(line, "keymap ") {
			if inSection {
				break
			}
			inSection = line == header || strings.HasPrefix(line, header+":")
			continue
		}
		if inSection {
			section = append(section, line)
		}
	}
	if !inSection && len(section) == 0 {
		return nil, fmt.Errorf("describe: keymap %q not found in dump", name)
	}
	return section, nil
}

// splitDescribeLine turns one indented Describe() body line into
// (kind, key, binding) table columns.
func splitDescribeLine(line string) (kind, key, binding string, ok bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "mod "):
		rest := strings.TrimPrefix(trimmed, "mod ")
		parts := strings.SplitN(rest, " = ", 2)
		if len(parts) != 2 {
			return "", "", "", false
		}
		return "mod", parts[0], parts[1], true
	case strings.HasPrefix(trimmed, "key "):
		rest := strings.TrimPrefix(trimmed, "key ")
		parts := strings.SplitN(rest, " = ", 2)
		if len(parts) != 2 {
			return "", "", "", false
		}
		return "key", parts[0], parts[1], true
	case strings.HasPrefix(trimmed, "default = "):
		return "default", "*", strings.TrimPrefix(trimmed, "default = "), true
	default:
		return "", "", "", false
	}
}
