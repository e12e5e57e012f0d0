package engine

import "github.com/RyosukeMondo/yamy-go/internal/model"

// recordedInjection is one call the fakeInjector observed.
type recordedInjection struct {
	kind  string
	name  string
	press bool
}

// fakeInjector is an Injector that just records every call, for
// assertions in pipeline tests.
type fakeInjector struct {
	calls []recordedInjection
}

func (f *fakeInjector) InjectKey(key *model.Key, press bool) error {
	name := ""
	if key != nil {
		name = key.Name
	}
	f.calls = append(f.calls, recordedInjection{kind: "key", name: name, press: press})
	return nil
}

func (f *fakeInjector) InjectRaw(codes []model.ScanCode, press bool) error {
	f.calls = append(f.calls, recordedInjection{kind: "raw", press: press})
	return nil
}

func (f *fakeInjector) InjectPointerButton(button string, press bool) error {
	f.calls = append(f.calls, recordedInjection{kind: "pointer-button", name: button, press: press})
	return nil
}

func (f *fakeInjector) InjectPointerWheel(delta int) error {
	f.calls = append(f.calls, recordedInjection{kind: "pointer-wheel"})
	return nil
}

func (f *fakeInjector) InjectPointerMove(dx, dy int) error {
	f.calls = append(f.calls, recordedInjection{kind: "pointer-move"})
	return nil
}

func (f *fakeInjector) InjectPointerPosition(x, y int) error {
	f.calls = append(f.calls, recordedInjection{kind: "pointer-position"})
	return nil
}

func (f *fakeInjector) pressesOf(name string) int {
	n := 0
	for _, c := range f.calls {
		if c.kind == "key" && c.name == name && c.press {
			n++
		}
	}
	return n
}

// fakeLogger discards everything; satisfies Logger without pulling in
// the standard log package's side effects during tests.
type fakeLogger struct {
	lines []string
}

func (f *fakeLogger) Printf(format string, args ...any) {
	f.lines = append(f.lines, format)
}

// fakeCommands runs &KeymapParent the same way internal/command's real
// registry does (Engine.ActivateParentKeymap(ctx.Current)), so pipeline
// tests can exercise the command-dispatch path without internal/command
// (which imports this package, so it can't be imported back here).
type fakeCommands struct {
	engine *Engine
}

func (f *fakeCommands) Execute(ctx *ActionContext) error {
	if ctx.Call != nil && ctx.Call.Name == "KeymapParent" {
		f.engine.ActivateParentKeymap(ctx.Current)
	}
	return nil
}

func newKey(name string, scan uint8) *model.Key {
	return &model.Key{Name: name, ScanCodes: []model.ScanCode{{Scan: scan}}}
}

// newTestSetting builds a minimal two-key Setting: "A" mapped through the
// Global keymap's default pass-through behavior, plus a Shift modifier
// key and a bound "A" -> "B" key assignment to exercise dispatch.
func newTestSetting(t interface {
	Helper()
	Fatalf(format string, args ...interface{})
}) *model.Setting {
	t.Helper()
	s := model.NewSetting()

	keyA := newKey("A", 0x1e)
	keyB := newKey("B", 0x30)
	shift := newKey("Shift_L", 0x2a)
	s.Keyboard.AddKey(keyA)
	s.Keyboard.AddKey(keyB)
	s.Keyboard.AddKey(shift)
	s.Keyboard.ModifierKeys = map[model.ModifierBit][]*model.Key{
		model.ModShift: {shift},
	}

	global := model.NewKeymap(0, "Global", model.KeymapPlain)
	global.Default = &model.KeySeq{
		Name:    "",
		Actions: []model.Action{model.NewKeyAction(model.ModifiedKey{Key: keyA, Mod: model.EmptyModifier()})},
	}
	global.Default.RecomputeMode()

	seqB := &model.KeySeq{
		Name:    "",
		Actions: []model.Action{model.NewKeyAction(model.ModifiedKey{Key: keyB, Mod: model.EmptyModifier()})},
	}
	seqB.RecomputeMode()
	global.AddAssignment(&model.KeyAssignment{
		LHS: model.ModifiedKey{Key: keyA, Mod: model.EmptyModifier()},
		RHS: seqB,
	})

	s.Global = global
	s.Keymaps = []*model.Keymap{global}
	return s
}

// newModifierSetting builds a Setting whose only key is a Shift bound as
// a true modifier (AssignMode True): pressing/releasing it should never
// reach generation, only update press state.
func newModifierSetting(t interface {
	Helper()
	Fatalf(format string, args ...interface{})
}) *model.Setting {
	t.Helper()
	s := model.NewSetting()
	shift := newKey("Shift_L", 0x2a)
	s.Keyboard.AddKey(shift)
	s.Keyboard.ModifierKeys = map[model.ModifierBit][]*model.Key{
		model.ModShift: {shift},
	}

	global := model.NewKeymap(0, "Global", model.KeymapPlain)
	global.Default = &model.KeySeq{}
	global.ResolvedMods[model.ModShift] = []model.ModAssignment{
		{Group: model.ModShift, Key: shift, Mode: model.True},
	}

	s.Global = global
	s.Keymaps = []*model.Keymap{global}
	return s
}

// newParentFallthroughSetting builds a Global keymap binding A -> B, and
// a Child keymap parented to Global with no bindings of its own and a
// synthesized one-action &KeymapParent default (what bindKeymap produces
// for a "keymap Name: Parent" statement with no explicit "= <keyseq>"),
// for exercising parent fallthrough end to end.
func newParentFallthroughSetting(t interface {
	Helper()
	Fatalf(format string, args ...interface{})
}) (*model.Setting, *model.Keymap) {
	t.Helper()
	s := model.NewSetting()

	keyA := newKey("A", 0x1e)
	keyB := newKey("B", 0x30)
	s.Keyboard.AddKey(keyA)
	s.Keyboard.AddKey(keyB)

	global := model.NewKeymap(0, "Global", model.KeymapPlain)
	global.Default = &model.KeySeq{}
	seqB := &model.KeySeq{Actions: []model.Action{model.NewKeyAction(model.ModifiedKey{Key: keyB, Mod: model.EmptyModifier()})}}
	seqB.RecomputeMode()
	global.AddAssignment(&model.KeyAssignment{
		LHS: model.ModifiedKey{Key: keyA, Mod: model.EmptyModifier()},
		RHS: seqB,
	})

	child := model.NewKeymap(1, "Child", model.KeymapPlain)
	child.Parent = global
	child.Default = &model.KeySeq{Actions: []model.Action{
		model.NewFunctionAction(&model.FunctionCall{Name: "KeymapParent"}),
	}}
	child.Default.RecomputeMode()

	s.Global = global
	s.Keymaps = []*model.Keymap{global, child}
	return s, child
}

// newPointerButtonSetting declares a "left" pointer-button key at the
// synthetic scan code internal/capture assigns it, bound in Global to
// the "right" button, for exercising pointer-button remapping through
// the ordinary keymap dispatch path.
func newPointerButtonSetting(t interface {
	Helper()
	Fatalf(format string, args ...interface{})
}) *model.Setting {
	t.Helper()
	s := model.NewSetting()

	left := &model.Key{Name: "left", ScanCodes: []model.ScanCode{{Scan: 0x10, E0: true, E1: true}}}
	right := &model.Key{Name: "right", ScanCodes: []model.ScanCode{{Scan: 0x11, E0: true, E1: true}}}
	s.Keyboard.AddKey(left)
	s.Keyboard.AddKey(right)

	global := model.NewKeymap(0, "Global", model.KeymapPlain)
	global.Default = &model.KeySeq{}
	seq := &model.KeySeq{Actions: []model.Action{model.NewKeyAction(model.ModifiedKey{Key: right, Mod: model.EmptyModifier()})}}
	seq.RecomputeMode()
	global.AddAssignment(&model.KeyAssignment{
		LHS: model.ModifiedKey{Key: left, Mod: model.EmptyModifier()},
		RHS: seq,
	})

	s.Global = global
	s.Keymaps = []*model.Keymap{global}
	return s
}
