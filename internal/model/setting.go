package model

// Keyboard is the top-level key/modifier catalog: every Key (by name and
// by scan-code set), the alias table, which keys serve as which modifier
// group, the pre-engine substitution table, the designated sync key, and
// the per-number-key modifier override table.
type Keyboard struct {
	Keys          []*Key
	byName        map[string]*Key
	Aliases       map[string]string
	ModifierKeys  map[ModifierBit][]*Key
	Substitutions map[ModifiedKey]ModifiedKey
	SyncKey       *Key
	NumberModOverride map[*Key]*Key
}

// NewKeyboard returns an empty Keyboard ready for AddKey calls.
func NewKeyboard() *Keyboard {
	return &Keyboard{
		byName:            make(map[string]*Key),
		Aliases:           make(map[string]string),
		ModifierKeys:      make(map[ModifierBit][]*Key),
		Substitutions:     make(map[ModifiedKey]ModifiedKey),
		NumberModOverride: make(map[*Key]*Key),
	}
}

// AddKey registers k in the arena under its primary name. Invariant 2:
// exactly one instance exists per Setting per name.
func (kb *Keyboard) AddKey(k *Key) {
	k.ID = KeyID(len(kb.Keys))
	kb.Keys = append(kb.Keys, k)
	kb.byName[k.Name] = k
	for _, alias := range k.Aliases {
		kb.Aliases[alias] = k.Name
	}
}

// FindByName resolves a key or alias name to its canonical Key.
func (kb *Keyboard) FindByName(name string) (*Key, bool) {
	if k, ok := kb.byName[name]; ok {
		return k, true
	}
	if canon, ok := kb.Aliases[name]; ok {
		k, ok := kb.byName[canon]
		return k, ok
	}
	return nil, false
}

// FindByScanCodes resolves the Key whose ScanCodes exactly match ev, used
// by capture lookup in step 2 of the engine pipeline.
func (kb *Keyboard) FindByScanCodes(ev []ScanCode) (*Key, bool) {
	for _, k := range kb.Keys {
		if k.MatchesScanCodes(ev) {
			return k, true
		}
	}
	return nil, false
}

// FindPrefixKey returns a Key for which ev is a strict scan-code prefix,
// used to detect a partially-captured multi-scancode key.
func (kb *Keyboard) FindPrefixKey(ev []ScanCode) (*Key, bool) {
	for _, k := range kb.Keys {
		if k.IsPrefixOf(ev) {
			return k, true
		}
	}
	return nil, false
}

// Substitute looks up mk in the substitution table. Substitutions are
// applied once, are never recursive, and preserve the caller's Up/Down
// polarity bits (the caller re-applies those after substitution).
func (kb *Keyboard) Substitute(mk ModifiedKey) (ModifiedKey, bool) {
	out, ok := kb.Substitutions[mk]
	return out, ok
}

// Options holds Setting's scalar compile-time knobs.
type Options struct {
	CorrectKanaLockHandling bool
	OneShotRepeatableDelay  int // repeat-count threshold, not a duration
	Sts4Mayu                bool
	Cts4Mayu                bool
	MouseEvent              bool
	DragThreshold           int
}

// DefaultOptions returns the original implementation's compiled-in
// defaults for any option the source configuration does not set.
func DefaultOptions() Options {
	return Options{
		OneShotRepeatableDelay: 1,
		DragThreshold:          4,
	}
}

// Setting is the fully compiled, immutable rewriting program: a Keyboard,
// the catalog of Keymaps, the KeySeq pool, scalar Options, and the symbol
// set active at compile time (retained for diagnostic re-emission, not
// consulted at runtime). Invariant 1: immutable once installed;
// reconfiguration atomically replaces the *Setting under the engine lock.
type Setting struct {
	Keyboard *Keyboard
	Keymaps  []*Keymap
	Global   *Keymap
	KeySeqs  map[string]*KeySeq
	Options  Options
	Symbols  map[string]bool
}

// NewSetting returns an empty Setting. Global must be assigned by the
// caller (the compiler always emits one); invariant 3 depends on it.
func NewSetting() *Setting {
	return &Setting{
		Keyboard: NewKeyboard(),
		KeySeqs:  make(map[string]*KeySeq),
		Options:  DefaultOptions(),
		Symbols:  make(map[string]bool),
	}
}

// ResolveFocusKeymaps returns, in insertion order, every windowAnd/
// windowOr Keymap whose regexes match (class, title) — the per-focus
// keymap list of §4.4 step 5. An error from a malformed regex is
// swallowed as a non-match (the compiler should have already diagnosed
// it); a production engine surfaces match errors via its logger instead.
func (s *Setting) ResolveFocusKeymaps(class, title string) []*Keymap {
	var matched []*Keymap
	for _, km := range s.Keymaps {
		if km.Kind == KeymapPlain {
			continue
		}
		if ok, err := km.DoesSameWindow(class, title); err == nil && ok {
			matched = append(matched, km)
		}
	}
	return matched
}

// FindKeymapByName resolves a Keymap by its declared name, the lookup the
// &Keymap/&KeymapParent/&KeymapWindow command primitives need to switch
// the engine's active keymap directly. Global is checked directly as
// well, though the compiler also appends it to s.Keymaps.
func (s *Setting) FindKeymapByName(name string) (*Keymap, bool) {
	if s.Global != nil && s.Global.Name == name {
		return s.Global, true
	}
	for _, km := range s.Keymaps {
		if km.Name == name {
			return km, true
		}
	}
	return nil, false
}

// FocusOfThread is the runtime per-thread focus record: which window the
// thread currently owns, whether it's a console, and the resolved
// keymap list that currently matches it. The front of Keymaps is the
// active keymap.
type FocusOfThread struct {
	ThreadID  int
	HwndFocus uintptr
	IsConsole bool
	Class     string
	Title     string
	Keymaps   []*Keymap
}

// CurrentKeymap returns the active keymap for this thread, falling back
// to global when the resolved list is empty (invariant 3).
func (f *FocusOfThread) CurrentKeymap(global *Keymap) *Keymap {
	if len(f.Keymaps) == 0 {
		return global
	}
	return f.Keymaps[0]
}
