package model

import "github.com/dlclark/regexp2"

// keyAssignmentBuckets is HASHED_KEY_ASSIGNMENT_SIZE from the original
// keymap.cpp: KeyAssignments are hashed by first-scancode % 31.
const keyAssignmentBuckets = 31

// KeymapID identifies a Keymap within a Setting's keymap catalog.
type KeymapID int

// KeymapKind discriminates the three Keymap flavors.
type KeymapKind int

const (
	KeymapPlain KeymapKind = iota
	KeymapWindowAnd
	KeymapWindowOr
)

// AssignMode is the role a physical key plays when it is itself bound as
// a modifier in a Keymap's ModAssignments.
type AssignMode int

const (
	NotModifier AssignMode = iota
	Normal
	True
	OneShot
	OneShotRepeatable
)

// AssignOp is the operator used by `mod <group> op <keyname>...` when
// folding a keymap's modifier assignment through its parent chain.
type AssignOp int

const (
	AssignOverwrite AssignOp = iota
	AssignSet
	AssignAdd
	AssignSub
)

// KeyAssignment binds a ModifiedKey to a KeySeq. Lookup is the three-tier
// strategy implemented by Keymap.SearchAssignment.
type KeyAssignment struct {
	LHS ModifiedKey
	RHS *KeySeq
}

// ModAssignment records that Key activates modifier Group while in Mode,
// within one Keymap.
type ModAssignment struct {
	Group ModifierBit
	Key   *Key
	Mode  AssignMode
	Op    AssignOp
}

// Keymap is a named context: either a plain prefix-hierarchy node or a
// window binding. Each holds its own default KeySeq, a hashed table of
// direct KeyAssignments, and a resolved (post-AdjustModifier) table of
// which keys serve as which modifier.
type Keymap struct {
	ID     KeymapID
	Name   string
	Kind   KeymapKind
	Parent *Keymap

	Default *KeySeq

	assignments [keyAssignmentBuckets][]*KeyAssignment

	// ModAssignments is the keymap's own declared deltas (before folding);
	// ResolvedMods is the absolute table AdjustModifier materializes.
	ModAssignments map[ModifierBit][]ModAssignment
	ResolvedMods   map[ModifierBit][]ModAssignment

	ClassRegex *regexp2.Regexp
	TitleRegex *regexp2.Regexp
}

// NewKeymap returns an empty Keymap of the given kind.
func NewKeymap(id KeymapID, name string, kind KeymapKind) *Keymap {
	return &Keymap{
		ID:             id,
		Name:           name,
		Kind:           kind,
		ModAssignments: make(map[ModifierBit][]ModAssignment),
		ResolvedMods:   make(map[ModifierBit][]ModAssignment),
	}
}

// AddAssignment inserts or replaces (by LHS.Key identity) a KeyAssignment
// in its hash bucket. A matching existing entry is updated in place
// rather than duplicated, mirroring Keymap::addAssignment's front-insert-
// or-update behavior.
func (k *Keymap) AddAssignment(a *KeyAssignment) {
	bucket := a.LHS.Key.ScanCodes[0].hashBucket()
	list := k.assignments[bucket]
	for i, existing := range list {
		if existing.LHS.Key == a.LHS.Key && existing.LHS.Mod.DoesMatch(a.LHS.Mod) && a.LHS.Mod.DoesMatch(existing.LHS.Mod) {
			list[i] = a
			return
		}
	}
	k.assignments[bucket] = append([]*KeyAssignment{a}, list...)
}

// AddModifier appends a declared ModAssignment delta for group.
func (k *Keymap) AddModifier(group ModifierBit, ma ModAssignment) {
	k.ModAssignments[group] = append(k.ModAssignments[group], ma)
}

// SearchAssignment implements the three escalating relaxations described
// in §4.3: full match, then stripped-virtual-bits match, then empty-
// modifier (base key only) match. Returns the bound KeySeq and true on
// hit; on miss, callers fall through to Default.
func (k *Keymap) SearchAssignment(mk ModifiedKey) (*KeySeq, bool) {
	if mk.Key == nil || len(mk.Key.ScanCodes) == 0 {
		return nil, false
	}
	bucket := mk.Key.ScanCodes[0].hashBucket()
	list := k.assignments[bucket]

	if rhs, ok := searchBucket(list, mk.Key, mk.Mod); ok {
		return rhs, true
	}
	if rhs, ok := searchBucket(list, mk.Key, mk.Mod.StripVirtual()); ok {
		return rhs, true
	}
	if rhs, ok := searchBucket(list, mk.Key, EmptyModifier()); ok {
		return rhs, true
	}
	return nil, false
}

func searchBucket(list []*KeyAssignment, key *Key, probe Modifier) (*KeySeq, bool) {
	for _, a := range list {
		if a.LHS.Key == key && a.LHS.Mod.DoesMatch(probe) {
			return a.RHS, true
		}
	}
	return nil, false
}

// SearchAssignmentLHS is SearchAssignment but also returns the matched
// assignment's own LHS modifier, needed by the generator to tell whether
// a match explicitly pinned Up/Down (meaning both legs should fire) or
// left them don't-care (meaning only the leg matching the physical event
// should fire).
func (k *Keymap) SearchAssignmentLHS(mk ModifiedKey) (Modifier, *KeySeq, bool) {
	if mk.Key == nil || len(mk.Key.ScanCodes) == 0 {
		return Modifier{}, nil, false
	}
	bucket := mk.Key.ScanCodes[0].hashBucket()
	list := k.assignments[bucket]

	for _, probe := range []Modifier{mk.Mod, mk.Mod.StripVirtual(), EmptyModifier()} {
		for _, a := range list {
			if a.LHS.Key == mk.Key && a.LHS.Mod.DoesMatch(probe) {
				return a.LHS.Mod, a.RHS, true
			}
		}
	}
	return Modifier{}, nil, false
}

// DoesSameWindow reports whether (class, title) matches this window
// keymap's regexes: And requires both, Or requires either. Plain keymaps
// never match (they are not window-bound).
func (k *Keymap) DoesSameWindow(class, title string) (bool, error) {
	switch k.Kind {
	case KeymapWindowAnd:
		c, err := matchRegex(k.ClassRegex, class)
		if err != nil || !c {
			return false, err
		}
		t, err := matchRegex(k.TitleRegex, title)
		return t, err
	case KeymapWindowOr:
		if k.ClassRegex != nil {
			if c, err := matchRegex(k.ClassRegex, class); err != nil {
				return false, err
			} else if c {
				return true, nil
			}
		}
		if k.TitleRegex != nil {
			return matchRegex(k.TitleRegex, title)
		}
		return false, nil
	default:
		return false, nil
	}
}

func matchRegex(re *regexp2.Regexp, s string) (bool, error) {
	if re == nil {
		return false, nil
	}
	return re.MatchString(s)
}

// AdjustModifier walks Keymaps in reverse declaration order and folds
// each keymap's declared ModAssignment deltas through its parent chain
// into an absolute ResolvedMods table, deduplicating so only the last
// declared entry per (group, key) survives. kb supplies the default
// modifier table a root keymap with no parent inherits from.
func AdjustModifier(keymaps []*Keymap, kb *Keyboard) {
	for i := len(keymaps) - 1; i >= 0; i-- {
		keymaps[i].adjustModifier(kb)
	}
}

func (k *Keymap) adjustModifier(kb *Keyboard) {
	base := make(map[ModifierBit][]ModAssignment)
	if k.Parent != nil {
		if len(k.Parent.ResolvedMods) == 0 {
			k.Parent.adjustModifier(kb)
		}
		for group, list := range k.Parent.ResolvedMods {
			base[group] = append([]ModAssignment(nil), list...)
		}
	} else {
		for group, keys := range kb.ModifierKeys {
			for _, key := range keys {
				base[group] = append(base[group], ModAssignment{Group: group, Key: key, Mode: Normal})
			}
		}
	}

	for group, deltas := range k.ModAssignments {
		for _, d := range deltas {
			switch d.Op {
			case AssignOverwrite, AssignSet:
				base[group] = []ModAssignment{d}
			case AssignAdd:
				base[group] = dedupAppend(base[group], d)
			case AssignSub:
				base[group] = removeKey(base[group], d.Key)
			}
		}
	}
	k.ResolvedMods = base
}

func dedupAppend(list []ModAssignment, d ModAssignment) []ModAssignment {
	out := removeKey(list, d.Key)
	return append(out, d)
}

func removeKey(list []ModAssignment, key *Key) []ModAssignment {
	out := list[:0:0]
	for _, ma := range list {
		if ma.Key != key {
			out = append(out, ma)
		}
	}
	return out
}
