package engine

import (
	"testing"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

func TestGetCurrentModifiersDetectsPressedGroup(t *testing.T) {
	shift := newKey("Shift_L", 0x2a)
	shift.IsPressed = true
	other := newKey("A", 0x1e)

	km := model.NewKeymap(0, "Global", model.KeymapPlain)
	km.ResolvedMods[model.ModShift] = []model.ModAssignment{{Group: model.ModShift, Key: shift, Mode: model.Normal}}

	mod := getCurrentModifiers(km, model.Modifier{}, [2]*model.Key{}, other, true)

	if !mod.IsPressed(model.ModShift) {
		t.Fatalf("expected Shift group reported pressed")
	}
	if !mod.IsPressed(model.ModDown) {
		t.Fatalf("expected Down bit set for a press event")
	}
	if mod.State(model.ModUp) != model.Released {
		t.Fatalf("expected Up bit released for a press event")
	}
}

func TestGetCurrentModifiersRepeatFromHistory(t *testing.T) {
	a := newKey("A", 0x1e)
	km := model.NewKeymap(0, "Global", model.KeymapPlain)

	mod := getCurrentModifiers(km, model.Modifier{}, [2]*model.Key{a, nil}, a, true)
	if !mod.IsPressed(model.ModRepeat) {
		t.Fatalf("expected Repeat bit set when key matches history")
	}
}

func TestFixModifierKeyForcesDontCareOnSelf(t *testing.T) {
	shift := newKey("Shift_L", 0x2a)
	km := model.NewKeymap(0, "Global", model.KeymapPlain)
	km.ResolvedMods[model.ModShift] = []model.ModAssignment{{Group: model.ModShift, Key: shift, Mode: model.OneShot}}

	mod := model.Modifier{}.Press(model.ModShift)
	fixed, mode := fixModifierKey(km, shift, mod)

	if mode != model.OneShot {
		t.Fatalf("expected OneShot mode, got %v", mode)
	}
	if fixed.State(model.ModShift) != model.DontCare {
		t.Fatalf("expected self-modifier bit forced to dont-care")
	}
}

func TestFixModifierKeyNotModifierForUnboundKey(t *testing.T) {
	a := newKey("A", 0x1e)
	km := model.NewKeymap(0, "Global", model.KeymapPlain)

	_, mode := fixModifierKey(km, a, model.Modifier{})
	if mode != model.NotModifier {
		t.Fatalf("expected NotModifier for a key with no modifier role, got %v", mode)
	}
}
