package model

import (
	"fmt"
	"sort"
	"strings"
)

// Describe renders a Setting as a canonical, deterministic text dump:
// one section per Keymap (sorted by name) listing its resolved modifier
// table and bound assignments, one section per KeySeq. Two compiles of
// the same source always produce byte-identical output; internal/describe
// diffs successive Describe() calls across a reload with go-udiff, and
// internal/describe.Table renders the --dump-keymap table view from the
// same text. Grounded on Keymap::describe and
// operator<<(KeySeq) in the original keymap.cpp.
func (s *Setting) Describe() string {
	var b strings.Builder

	keymaps := append([]*Keymap(nil), s.Keymaps...)
	sort.Slice(keymaps, func(i, j int) bool { return keymaps[i].Name < keymaps[j].Name })

	for _, km := range keymaps {
		describeKeymap(&b, km)
	}

	names := make([]string, 0, len(s.KeySeqs))
	for name := range s.KeySeqs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString("keyseq ")
		b.WriteString(name)
		b.WriteString(" = ")
		describeKeySeq(&b, s.KeySeqs[name])
		b.WriteByte('\n')
	}

	return b.String()
}

func describeKeymap(b *strings.Builder, km *Keymap) {
	fmt.Fprintf(b, "keymap %s", km.Name)
	if km.Parent != nil {
		fmt.Fprintf(b, ": %s", km.Parent.Name)
	}
	b.WriteByte('\n')

	groups := make([]ModifierBit, 0, len(km.ResolvedMods))
	for g := range km.ResolvedMods {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	for _, g := range groups {
		assigns := km.ResolvedMods[g]
		keys := make([]string, len(assigns))
		for i, a := range assigns {
			keys[i] = a.Key.String()
		}
		fmt.Fprintf(b, "  mod %d = %s\n", g, strings.Join(keys, " "))
	}

	for bucket := 0; bucket < keyAssignmentBuckets; bucket++ {
		for _, a := range km.assignments[bucket] {
			fmt.Fprintf(b, "  key %s = ", a.LHS.String())
			describeKeySeq(b, a.RHS)
			b.WriteByte('\n')
		}
	}

	if km.Default != nil {
		b.WriteString("  default = ")
		describeKeySeq(b, km.Default)
		b.WriteByte('\n')
	}
}

func describeKeySeq(b *strings.Builder, ks *KeySeq) {
	if ks == nil {
		b.WriteString("<nil>")
		return
	}
	if ks.Name != "" {
		fmt.Fprintf(b, "$%s", ks.Name)
		return
	}
	b.WriteByte('(')
	for i, a := range ks.Actions {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch a.Kind {
		case ActionKey:
			b.WriteString(a.Key.String())
		case ActionKeySeq:
			describeKeySeq(b, a.Seq)
		case ActionFunction:
			fmt.Fprintf(b, "&%s(%s)", a.Fn.Name, strings.Join(a.Fn.Args, ", "))
		}
	}
	b.WriteByte(')')
}
