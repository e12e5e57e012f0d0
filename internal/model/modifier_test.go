package model

import "testing"

func TestModifierDoesMatchDontCare(t *testing.T) {
	probe := EmptyModifier()
	stored := Modifier{}.Press(ModShift).Release(ModControl)

	if !stored.DoesMatch(probe) {
		t.Error("empty probe should match any stored modifier (don't-care matches anything)")
	}
	if !probe.DoesMatch(stored) {
		t.Error("DoesMatch should be symmetric for don't-care bits")
	}
}

func TestModifierDoesMatchExplicitMustEqual(t *testing.T) {
	a := Modifier{}.Press(ModShift)
	b := Modifier{}.Release(ModShift)

	if a.DoesMatch(b) {
		t.Error("explicit press should not match explicit release on the same bit")
	}

	c := Modifier{}.Press(ModShift)
	if !a.DoesMatch(c) {
		t.Error("identical explicit states should match")
	}
}

func TestModifierStripVirtualClearsModBank(t *testing.T) {
	m := Modifier{}.Press(ModShift).Press(Mod(3)).Release(Mod(19))
	stripped := m.StripVirtual()

	if stripped.State(Mod(3)) != DontCare {
		t.Error("Mod(3) should become don't-care after StripVirtual")
	}
	if stripped.State(Mod(19)) != DontCare {
		t.Error("Mod(19) should become don't-care after StripVirtual")
	}
	if stripped.State(ModShift) != Pressed {
		t.Error("StripVirtual must not touch BASIC bits")
	}
}

func TestModifierMergePendingEdit(t *testing.T) {
	base := Modifier{}.Press(ModShift).Release(ModControl)
	edit := Modifier{}.Release(ModShift)

	merged := base.Merge(edit)
	if merged.State(ModShift) != Released {
		t.Error("edit should override base on a bit it asserts")
	}
	if merged.State(ModControl) != Released {
		t.Error("merge should preserve base bits the edit leaves don't-care")
	}
}

func TestModifierEmpty(t *testing.T) {
	if !(Modifier{}).Empty() {
		t.Error("zero-value Modifier should be Empty")
	}
	if (Modifier{}).Press(ModAlt).Empty() {
		t.Error("Modifier with an explicit bit should not be Empty")
	}
}
