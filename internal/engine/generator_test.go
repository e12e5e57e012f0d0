package engine

import (
	"testing"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

func newGenEngine(t *testing.T, s *model.Setting) (*Engine, *fakeInjector) {
	t.Helper()
	inj := &fakeInjector{}
	e := New(inj, &fakeLogger{})
	e.setting = s
	return e, inj
}

func TestGenerateModifierEventsPressesFirstKeyOfGroup(t *testing.T) {
	s := model.NewSetting()
	shiftL := newKey("Shift_L", 0x2a)
	shiftR := newKey("Shift_R", 0x36)
	s.Keyboard.ModifierKeys = map[model.ModifierBit][]*model.Key{
		model.ModShift: {shiftL, shiftR},
	}
	e, inj := newGenEngine(t, s)

	mod := model.Modifier{}.Press(model.ModShift)
	e.generateModifierEvents(mod)

	if got := inj.pressesOf("Shift_L"); got != 1 {
		t.Fatalf("expected Shift_L pressed once, got %d (%v)", got, inj.calls)
	}
	if got := inj.pressesOf("Shift_R"); got != 0 {
		t.Fatalf("expected Shift_R left untouched, got %d presses", got)
	}
}

func TestGenerateModifierEventsReleasesHeldKeys(t *testing.T) {
	s := model.NewSetting()
	shiftL := newKey("Shift_L", 0x2a)
	shiftL.IsPressedOnWin32 = true
	s.Keyboard.ModifierKeys = map[model.ModifierBit][]*model.Key{
		model.ModShift: {shiftL},
	}
	e, inj := newGenEngine(t, s)

	e.generateModifierEvents(model.Modifier{}.Release(model.ModShift))

	found := false
	for _, c := range inj.calls {
		if c.kind == "key" && c.name == "Shift_L" && !c.press {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Shift_L released, calls=%v", inj.calls)
	}
}

func TestGenerateModifierEventsAltGuardInsertsShiftTap(t *testing.T) {
	s := model.NewSetting()
	altL := newKey("Alt_L", 0x38)
	shift := newKey("Shift_L", 0x2a)
	s.Keyboard.ModifierKeys = map[model.ModifierBit][]*model.Key{
		model.ModAlt:   {altL},
		model.ModShift: {shift},
	}
	e, inj := newGenEngine(t, s)
	e.lastGeneratedBasicKey = altL

	e.generateModifierEvents(model.Modifier{}.Release(model.ModAlt))

	pressCount, releaseCount := 0, 0
	for _, c := range inj.calls {
		if c.kind == "key" && c.name == "Shift_L" {
			if c.press {
				pressCount++
			} else {
				releaseCount++
			}
		}
	}
	if pressCount != 1 || releaseCount != 1 {
		t.Fatalf("expected a single Shift tap guarding the Alt release, calls=%v", inj.calls)
	}
}

func TestGenerateKeySeqEventsPartUpFiresOnlyLastRelease(t *testing.T) {
	s := model.NewSetting()
	a := newKey("A", 0x1e)
	b := newKey("B", 0x30)
	s.Keyboard.AddKey(a)
	s.Keyboard.AddKey(b)
	e, inj := newGenEngine(t, s)

	seq := &model.KeySeq{Actions: []model.Action{
		model.NewKeyAction(model.ModifiedKey{Key: a, Mod: model.EmptyModifier()}),
		model.NewKeyAction(model.ModifiedKey{Key: b, Mod: model.EmptyModifier()}),
	}}
	seq.RecomputeMode()
	b.IsPressedOnWin32 = true // simulate the earlier Part_down press

	c := Current{Modifier: model.Modifier{}}
	e.generateKeySeqEvents(c, seq, model.PartUp)

	if len(inj.calls) != 1 || inj.calls[0].name != "B" || inj.calls[0].press {
		t.Fatalf("expected exactly one release of B, got %v", inj.calls)
	}
}

func TestGenerateKeySeqEventsPartDownTapsInteriorActions(t *testing.T) {
	s := model.NewSetting()
	a := newKey("A", 0x1e)
	b := newKey("B", 0x30)
	s.Keyboard.AddKey(a)
	s.Keyboard.AddKey(b)
	e, inj := newGenEngine(t, s)

	seq := &model.KeySeq{Actions: []model.Action{
		model.NewKeyAction(model.ModifiedKey{Key: a, Mod: model.EmptyModifier()}),
		model.NewKeyAction(model.ModifiedKey{Key: b, Mod: model.EmptyModifier()}),
	}}
	seq.RecomputeMode()

	c := Current{Modifier: model.Modifier{}}
	e.generateKeySeqEvents(c, seq, model.PartDown)

	if inj.pressesOf("A") != 1 {
		t.Fatalf("expected interior action A tapped once, calls=%v", inj.calls)
	}
	releasedA := false
	for _, call := range inj.calls {
		if call.name == "A" && !call.press {
			releasedA = true
		}
	}
	if !releasedA {
		t.Fatalf("expected interior action A released as part of its tap, calls=%v", inj.calls)
	}
	if got := inj.pressesOf("B"); got != 1 {
		t.Fatalf("expected final action B pressed once, got %d", got)
	}
	for _, call := range inj.calls {
		if call.name == "B" && !call.press {
			t.Fatalf("Part_down must not release the final action, calls=%v", inj.calls)
		}
	}
}

func TestGenerateKeyboardEventsRecursionGuardStopsRunaway(t *testing.T) {
	s := model.NewSetting()
	a := newKey("A", 0x1e)
	s.Keyboard.AddKey(a)
	e, _ := newGenEngine(t, s)

	km := model.NewKeymap(0, "Global", model.KeymapPlain)
	selfSeq := &model.KeySeq{}
	km.Default = selfSeq
	selfSeq.Actions = []model.Action{model.NewKeyAction(model.ModifiedKey{Key: a, Mod: model.EmptyModifier()})}
	km.AddAssignment(&model.KeyAssignment{
		LHS: model.ModifiedKey{Key: a, Mod: model.EmptyModifier()},
		RHS: selfSeq,
	})

	c := Current{Key: a, Keymap: km, Modifier: model.Modifier{}, Pressed: true}
	e.generationDepth = maxGenerationRecursion - 1
	e.generateKeyboardEvents(c)

	if e.generationDepth != maxGenerationRecursion-1 {
		t.Fatalf("expected generationDepth restored after guard trip, got %d", e.generationDepth)
	}
}
