package lang

import (
	"strconv"
	"strings"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

// Compile parses file (and its includes) and binds the result into a
// *model.Setting. Returns a nil Setting if any non-fatal Diagnostic was
// recorded (matching the original "zero errors" success criterion) or if
// a fatal Diagnostic stopped compilation early.
func Compile(file string, seedSymbols map[string]bool, loader FileLoader) (*model.Setting, []Diagnostic) {
	p := NewParser(loader, seedSymbols)
	stmts, diags := p.ParseFile(file)

	b := &binder{
		setting:     model.NewSetting(),
		diags:       diags,
		file:        file,
		keymapNames: make(map[string]*model.Keymap),
		keySeqPool:  make(map[string]*model.KeySeq),
		knownFuncs:  KnownFunctionNames,
	}
	b.setting.Symbols = p.symbols
	b.bindAll(stmts)
	b.finish()

	if b.hasFatal() || b.hasError() {
		return nil, b.diags
	}
	return b.setting, b.diags
}

// KnownFunctionNames is consulted by suggest.go when a &function(...)
// call names an unregistered command; internal/command.Names() is the
// real source of truth and is wired in by cmd/yamy at startup via
// SetKnownFunctionNames, keeping this package free of an import cycle.
var KnownFunctionNames []string

// SetKnownFunctionNames lets the command registry publish its names for
// typo-suggestion diagnostics without internal/lang importing
// internal/command.
func SetKnownFunctionNames(names []string) { KnownFunctionNames = names }

type binder struct {
	setting       *model.Setting
	diags         []Diagnostic
	file          string
	current       *model.Keymap
	keymapNames   map[string]*model.Keymap
	pendingParent map[string]string
	keySeqPool    map[string]*model.KeySeq
	knownFuncs    []string
}

func (b *binder) errorf(line int, format string, args ...any) {
	b.diags = append(b.diags, Diagnostic{File: b.file, Line: line, Message: formatf(format, args...)})
}

func (b *binder) hasFatal() bool {
	for _, d := range b.diags {
		if d.Fatal {
			return true
		}
	}
	return false
}

func (b *binder) hasError() bool {
	return len(b.diags) > 0
}

func (b *binder) bindAll(stmts []Stmt) {
	b.pendingParent = make(map[string]string)

	global := model.NewKeymap(0, "Global", model.KeymapPlain)
	b.setting.Global = global
	b.setting.Keymaps = append(b.setting.Keymaps, global)
	b.keymapNames["Global"] = global
	b.current = global

	for _, s := range stmts {
		switch s.Kind {
		case StmtDef:
			b.bindDef(s)
		case StmtKeymap:
			b.bindKeymap(s)
		case StmtWindow:
			b.bindWindow(s)
		case StmtKey:
			b.bindKeyAssignment(s)
		case StmtEvent:
			b.bindEventAssignment(s)
		case StmtMod:
			b.bindMod(s)
		case StmtModAssign:
			// Tap-output bindings for virtual modifier keys are parsed
			// but not bound: the model has no field for them, so they
			// reach neither the engine nor describe/status.
		case StmtKeySeqDecl:
			b.bindKeySeqDecl(s)
		}
	}
}

func (b *binder) finish() {
	for name, parentName := range b.pendingParent {
		km := b.keymapNames[name]
		parent, ok := b.keymapNames[parentName]
		if !ok {
			b.errorf(0, "keymap %s: unknown parent %s%s", name, parentName, suggestSuffix(parentName, b.keymapList()))
			continue
		}
		km.Parent = parent
	}
	model.AdjustModifier(b.setting.Keymaps, b.setting.Keyboard)
}

func (b *binder) keymapList() []string {
	names := make([]string, 0, len(b.keymapNames))
	for n := range b.keymapNames {
		names = append(names, n)
	}
	return names
}

func suggestSuffix(typo string, candidates []string) string {
	if s := SuggestName(typo, candidates); s != "" {
		return " (did you mean " + s + "?)"
	}
	return ""
}

// --- def ---------------------------------------------------------------

func (b *binder) bindDef(s Stmt) {
	switch s.DefKind {
	case "key":
		b.bindDefKey(s)
	case "mod":
		b.bindDefMod(s)
	case "sync":
		b.bindDefSync(s)
	case "alias":
		b.bindDefAlias(s)
	case "subst":
		b.bindDefSubst(s)
	case "numbermod":
		b.bindDefNumberMod(s)
	case "option":
		b.bindDefOption(s)
	default:
		b.errorf(s.Line, "unknown def sub-kind %q", s.DefKind)
	}
}

func (b *binder) bindDefKey(s Stmt) {
	if s.DefName == "" {
		b.errorf(s.Line, "def key requires a name")
		return
	}
	var codes []model.ScanCode
	for _, arg := range s.DefArgs {
		sc, ok := parseScanCode(arg)
		if !ok {
			b.errorf(s.Line, "def key %s: malformed scancode %q", s.DefName, arg)
			continue
		}
		codes = append(codes, sc)
	}
	if len(codes) == 0 {
		b.errorf(s.Line, "def key %s: at least one scancode required", s.DefName)
		return
	}
	k := &model.Key{Name: s.DefName, ScanCodes: codes}
	b.setting.Keyboard.AddKey(k)
}

// parseScanCode accepts "1e", "0x1e", "e0-1e" (extended), "e1-e0-1e".
func parseScanCode(s string) (model.ScanCode, bool) {
	parts := strings.Split(s, "-")
	var sc model.ScanCode
	for _, p := range parts {
		switch strings.ToLower(p) {
		case "e0":
			sc.E0 = true
			continue
		case "e1":
			sc.E1 = true
			continue
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(p, "0x"), 16, 8)
		if err != nil {
			return model.ScanCode{}, false
		}
		sc.Scan = uint8(n)
	}
	return sc, true
}

func (b *binder) bindDefMod(s Stmt) {
	group, ok := modifierGroupByName(s.DefName)
	if !ok {
		b.errorf(s.Line, "def mod: unknown group %q", s.DefName)
		return
	}
	for _, name := range s.DefArgs {
		k, ok := b.setting.Keyboard.FindByName(name)
		if !ok {
			b.errorf(s.Line, "def mod %s: unknown key %q", s.DefName, name)
			continue
		}
		b.setting.Keyboard.ModifierKeys[group] = append(b.setting.Keyboard.ModifierKeys[group], k)
	}
}

func (b *binder) bindDefSync(s Stmt) {
	for _, arg := range s.DefArgs {
		sc, ok := parseScanCode(arg)
		if !ok {
			continue
		}
		if k, ok := b.setting.Keyboard.FindByScanCodes([]model.ScanCode{sc}); ok {
			b.setting.Keyboard.SyncKey = k
			return
		}
	}
	b.errorf(s.Line, "def sync: no key matches given scancode(s)")
}

func (b *binder) bindDefAlias(s Stmt) {
	if len(s.DefArgs) == 0 {
		b.errorf(s.Line, "def alias %s: missing target key", s.DefName)
		return
	}
	target, ok := b.setting.Keyboard.FindByName(s.DefArgs[0])
	if !ok {
		b.errorf(s.Line, "def alias %s: unknown key %q", s.DefName, s.DefArgs[0])
		return
	}
	target.Aliases = append(target.Aliases, s.DefName)
	b.setting.Keyboard.Aliases[s.DefName] = target.Name
}

func (b *binder) bindDefSubst(s Stmt) {
	idx := -1
	for i, a := range s.DefArgs {
		if a == "=>" {
			idx = i
			break
		}
	}
	lhsText := s.DefName
	var rhsToks []string
	if idx >= 0 {
		rhsToks = s.DefArgs[idx+1:]
	} else {
		rhsToks = s.DefArgs
	}
	lhs, ok1 := b.resolveModifiedKeyName(lhsText)
	if len(rhsToks) == 0 {
		b.errorf(s.Line, "def subst %s: missing '=>' rhs", lhsText)
		return
	}
	rhs, ok2 := b.resolveModifiedKeyName(rhsToks[len(rhsToks)-1])
	if !ok1 || !ok2 {
		b.errorf(s.Line, "def subst %s: unresolved key reference", lhsText)
		return
	}
	b.setting.Keyboard.Substitutions[lhs] = rhs
}

func (b *binder) bindDefNumberMod(s Stmt) {
	if len(s.DefArgs) == 0 {
		b.errorf(s.Line, "def numbermod %s: missing modifier key", s.DefName)
		return
	}
	numberKey, ok := b.setting.Keyboard.FindByName(s.DefName)
	if !ok {
		b.errorf(s.Line, "def numbermod: unknown number key %q", s.DefName)
		return
	}
	modKey, ok := b.setting.Keyboard.FindByName(s.DefArgs[0])
	if !ok {
		b.errorf(s.Line, "def numbermod %s: unknown modifier key %q", s.DefName, s.DefArgs[0])
		return
	}
	b.setting.Keyboard.NumberModOverride[numberKey] = modKey
}

func (b *binder) bindDefOption(s Stmt) {
	if len(s.DefArgs) == 0 {
		b.errorf(s.Line, "def option %s: missing value", s.DefName)
		return
	}
	val := s.DefArgs[0]
	opts := &b.setting.Options
	switch s.DefName {
	case "correctKanaLockHandling":
		opts.CorrectKanaLockHandling = parseBool(val)
	case "oneShotRepeatableDelay":
		n, err := strconv.Atoi(val)
		if err != nil {
			b.errorf(s.Line, "def option oneShotRepeatableDelay: %q is not a bare repeat count", val)
			return
		}
		opts.OneShotRepeatableDelay = n
	case "sts4mayu":
		opts.Sts4Mayu = parseBool(val)
	case "cts4mayu":
		opts.Cts4Mayu = parseBool(val)
	case "mouseEvent":
		opts.MouseEvent = parseBool(val)
	case "dragThreshold":
		opts.DragThreshold = parseInt(val)
	default:
		b.errorf(s.Line, "def option: unknown option %q", s.DefName)
	}
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// --- keymap / window -----------------------------------------------------

func (b *binder) bindKeymap(s Stmt) {
	km, ok := b.keymapNames[s.KeymapName]
	if !ok {
		km = model.NewKeymap(model.KeymapID(len(b.setting.Keymaps)), s.KeymapName, model.KeymapPlain)
		b.setting.Keymaps = append(b.setting.Keymaps, km)
		b.keymapNames[s.KeymapName] = km
	}
	if s.KeymapParent != "" {
		b.pendingParent[s.KeymapName] = s.KeymapParent
	}
	switch {
	case len(s.DefaultSeq) > 0:
		km.Default = b.bindActionList(s.DefaultSeq, "")
	case s.KeymapParent != "":
		km.Default = defaultParentFallthroughSeq()
	}
	b.current = km
}

// defaultParentFallthroughSeq is the implicit default a "keymap Name:
// Parent" statement gets when it supplies no "= <keyseq>" of its own: a
// single &KeymapParent call, so a key this keymap doesn't bind falls
// through to the parent's own lookup instead of being swallowed.
func defaultParentFallthroughSeq() *model.KeySeq {
	ks := &model.KeySeq{Actions: []model.Action{
		model.NewFunctionAction(&model.FunctionCall{Name: "KeymapParent"}),
	}}
	ks.RecomputeMode()
	return ks
}

func (b *binder) bindWindow(s Stmt) {
	kind := model.KeymapWindowOr
	if s.WindowKind == "and" {
		kind = model.KeymapWindowAnd
	}
	km := model.NewKeymap(model.KeymapID(len(b.setting.Keymaps)), s.KeymapName, kind)
	if s.ClassPattern != "" {
		re, err := CompileWindowRegex(s.ClassPattern)
		if err != nil {
			b.errorf(s.Line, "window %s: bad class regex: %v", s.KeymapName, err)
		}
		km.ClassRegex = re
	}
	if s.TitlePattern != "" {
		re, err := CompileWindowRegex(s.TitlePattern)
		if err != nil {
			b.errorf(s.Line, "window %s: bad title regex: %v", s.KeymapName, err)
		}
		km.TitleRegex = re
	}
	b.setting.Keymaps = append(b.setting.Keymaps, km)
	b.keymapNames[s.KeymapName] = km
	b.current = km
}

// --- key / event ---------------------------------------------------------

func (b *binder) bindKeyAssignment(s Stmt) {
	rhs := b.bindActionList(s.BindSeq, "")
	for _, lhs := range s.BindKeys {
		mk, ok := b.bindModifiedKeyRef(lhs)
		if !ok {
			b.errorf(s.Line, "key binding: unknown key %q%s", lhs.KeyName, suggestSuffix(lhs.KeyName, b.keyNames()))
			continue
		}
		b.current.AddAssignment(&model.KeyAssignment{LHS: mk, RHS: rhs})
	}
}

func (b *binder) bindEventAssignment(s Stmt) {
	if len(s.BindKeys) == 0 {
		b.errorf(s.Line, "event binding requires an event name")
		return
	}
	name := s.BindKeys[0].KeyName
	k, ok := b.setting.Keyboard.FindByName(name)
	if !ok {
		k = &model.Key{Name: name, IsEvent: true}
		b.setting.Keyboard.AddKey(k)
	}
	rhs := b.bindActionList(s.BindSeq, "")
	b.current.AddAssignment(&model.KeyAssignment{LHS: model.ModifiedKey{Key: k, Mod: model.EmptyModifier()}, RHS: rhs})
}

func (b *binder) keyNames() []string {
	names := make([]string, 0, len(b.setting.Keyboard.Keys))
	for _, k := range b.setting.Keyboard.Keys {
		names = append(names, k.Name)
	}
	return names
}

// bindModifiedKeyRef resolves a RawAction LHS (mods + name) into a
// model.ModifiedKey, looking the key up by name/alias.
func (b *binder) bindModifiedKeyRef(ra RawAction) (model.ModifiedKey, bool) {
	k, ok := b.setting.Keyboard.FindByName(ra.KeyName)
	if !ok {
		return model.ModifiedKey{}, false
	}
	return model.ModifiedKey{Key: k, Mod: modifierFromPrefixes(ra.KeyMods)}, true
}

// resolveModifiedKeyName parses a single "Mod-Mod-Name" joined token
// (used by def subst, where prefix tokens were already re-joined by the
// tokenizer into separate tokens but collapsed to one DefArgs string).
func (b *binder) resolveModifiedKeyName(s string) (model.ModifiedKey, bool) {
	mods, name := splitModifierPrefixes(s)
	k, ok := b.setting.Keyboard.FindByName(name)
	if !ok {
		return model.ModifiedKey{}, false
	}
	return model.ModifiedKey{Key: k, Mod: modifierFromPrefixes(mods)}, true
}

func splitModifierPrefixes(s string) ([]string, string) {
	var mods []string
	for {
		matched := ""
		for _, p := range sortedPrefixes {
			if strings.HasPrefix(s, p) {
				matched = p
				break
			}
		}
		if matched == "" {
			break
		}
		mods = append(mods, matched)
		s = s[len(matched):]
	}
	return mods, s
}

// modifierFromPrefixes folds a run of prefix tokens into a Modifier:
// each prefix presses its bit by default; a preceding "*" flips the next
// bit to don't-care, "~" flips it to release.
func modifierFromPrefixes(prefixes []string) model.Modifier {
	m := model.Modifier{}
	state := model.Pressed
	for _, p := range prefixes {
		switch p {
		case "*":
			state = model.DontCare
			continue
		case "~":
			state = model.Released
			continue
		}
		bit, ok := modifierBitForPrefix(p)
		if !ok {
			state = model.Pressed
			continue
		}
		switch state {
		case model.Pressed:
			m = m.Press(bit)
		case model.Released:
			m = m.Release(bit)
		case model.DontCare:
			m = m.DontCareBit(bit)
		}
		state = model.Pressed
	}
	return m
}

func modifierBitForPrefix(p string) (model.ModifierBit, bool) {
	switch p {
	case "S-":
		return model.ModShift, true
	case "A-":
		return model.ModAlt, true
	case "C-":
		return model.ModControl, true
	case "W-":
		return model.ModWindows, true
	case "U-":
		return model.ModUp, true
	case "D-":
		return model.ModDown, true
	case "R-":
		return model.ModRepeat, true
	case "NL-":
		return model.ModNumLock, true
	case "CL-":
		return model.ModCapsLock, true
	case "SL-":
		return model.ModScrollLock, true
	case "KL-":
		return model.ModKanaLock, true
	case "IL-":
		return model.ModImeLock, true
	case "IC-":
		return model.ModImeComp, true
	case "MAX-":
		return model.ModMaximized, true
	case "MIN-":
		return model.ModMinimized, true
	case "MMAX-":
		return model.ModMdiMaximized, true
	case "MMIN-":
		return model.ModMdiMinimized, true
	case "T-":
		return model.ModTouchpad, true
	case "TS-":
		return model.ModTouchpadSticky, true
	}
	if strings.HasPrefix(p, "L") && strings.HasSuffix(p, "-") {
		if n, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(p, "L"), "-"), 16, 8); err == nil {
			return model.Lock(int(n)), true
		}
	}
	if strings.HasPrefix(p, "M") && strings.HasSuffix(p, "-") {
		if n, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(p, "M"), "-"), 16, 8); err == nil {
			return model.Mod(int(n)), true
		}
	}
	return 0, false
}

func modifierGroupByName(name string) (model.ModifierBit, bool) {
	switch strings.ToLower(name) {
	case "shift":
		return model.ModShift, true
	case "alt":
		return model.ModAlt, true
	case "control", "ctrl":
		return model.ModControl, true
	case "windows", "win":
		return model.ModWindows, true
	}
	return 0, false
}

// --- mod -------------------------------------------------------------

func (b *binder) bindMod(s Stmt) {
	group, ok := modifierGroupByName(s.ModGroup)
	if !ok {
		b.errorf(s.Line, "mod: unknown group %q", s.ModGroup)
		return
	}
	mode := assignModeForPrefix(s.ModMode)
	op := assignOpForText(s.ModOp)
	for _, name := range s.ModKeys {
		k, ok := b.setting.Keyboard.FindByName(name)
		if !ok {
			b.errorf(s.Line, "mod %s: unknown key %q", s.ModGroup, name)
			continue
		}
		b.current.AddModifier(group, model.ModAssignment{Group: group, Key: k, Mode: mode, Op: op})
	}
}

func assignModeForPrefix(prefix string) model.AssignMode {
	switch prefix {
	case "!":
		return model.True
	case "!!":
		return model.OneShot
	case "!!!":
		return model.OneShotRepeatable
	default:
		return model.Normal
	}
}

func assignOpForText(op string) model.AssignOp {
	switch op {
	case "+=":
		return model.AssignAdd
	case "-=":
		return model.AssignSub
	case "=":
		return model.AssignSet
	default:
		return model.AssignOverwrite
	}
}

// --- keyseq ------------------------------------------------------------

func (b *binder) bindKeySeqDecl(s Stmt) {
	bound := b.bindActionList(s.KeySeqBody, s.KeySeqName)
	if placeholder, ok := b.keySeqPool[s.KeySeqName]; ok {
		// A use-before-declaration reference already interned a stub;
		// fill it in place so every existing pointer to it now resolves
		// to the real body instead of duplicating the KeySeq.
		placeholder.Actions = bound.Actions
		placeholder.Mode = bound.Mode
		bound = placeholder
	}
	b.setting.KeySeqs[s.KeySeqName] = bound
	b.keySeqPool[s.KeySeqName] = bound
}

// bindActionList converts RawActions into a bound *model.KeySeq,
// resolving $name references against the keyseq pool (forward
// references are allowed: the pool is populated across the whole file
// before any engine use, and named KeySeqs are looked up lazily via a
// pointer fixed up in a second pass if not yet present).
func (b *binder) bindActionList(raws []RawAction, name string) *model.KeySeq {
	ks := &model.KeySeq{Name: name}
	for _, ra := range raws {
		switch {
		case ra.SeqRef != "":
			ref := b.keySeqPool[ra.SeqRef]
			if ref == nil {
				ref = &model.KeySeq{Name: ra.SeqRef}
				b.keySeqPool[ra.SeqRef] = ref
			}
			ks.Actions = append(ks.Actions, model.NewKeySeqAction(ref))
		case ra.FuncName != "":
			ks.Actions = append(ks.Actions, model.NewFunctionAction(&model.FunctionCall{
				Name: ra.FuncName,
				Args: ra.FuncArgs,
				Mod:  modifierFromPrefixes(ra.FuncMods),
			}))
			if len(b.knownFuncs) > 0 && !containsString(b.knownFuncs, ra.FuncName) {
				b.errorf(0, "unknown function %q%s", ra.FuncName, suggestSuffix(ra.FuncName, b.knownFuncs))
			}
		case ra.KeyName != "":
			if k, ok := b.setting.Keyboard.FindByName(ra.KeyName); ok {
				ks.Actions = append(ks.Actions, model.NewKeyAction(model.ModifiedKey{
					Key: k,
					Mod: modifierFromPrefixes(ra.KeyMods),
				}))
			} else {
				b.errorf(0, "unknown key %q in key sequence%s", ra.KeyName, suggestSuffix(ra.KeyName, b.keyNames()))
			}
		}
	}
	ks.RecomputeMode()
	return ks
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
