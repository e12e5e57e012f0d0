package model

import "testing"

func TestDescribeIsDeterministic(t *testing.T) {
	build := func() *Setting {
		s := NewSetting()
		a := &Key{Name: "A", ScanCodes: []ScanCode{{Scan: 0x1e}}}
		s.Keyboard.AddKey(a)

		km := NewKeymap(0, "Global", KeymapPlain)
		seq := &KeySeq{Name: "", Actions: []Action{NewKeyAction(ModifiedKey{Key: a, Mod: EmptyModifier()})}}
		km.AddAssignment(&KeyAssignment{LHS: ModifiedKey{Key: a, Mod: EmptyModifier()}, RHS: seq})
		s.Keymaps = []*Keymap{km}
		s.Global = km
		return s
	}

	first := build().Describe()
	second := build().Describe()
	if first != second {
		t.Fatalf("Describe() must be deterministic across identical compiles:\n%s\n---\n%s", first, second)
	}
	if first == "" {
		t.Fatal("expected non-empty description")
	}
}

func TestDescribeNamedKeySeqReferencesByName(t *testing.T) {
	s := NewSetting()
	s.KeySeqs["greeting"] = &KeySeq{Name: "greeting"}

	out := s.Describe()
	if got, want := out, "keyseq greeting = $greeting\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
