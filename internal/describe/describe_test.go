package describe

import (
	"strings"
	"testing"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

func buildSetting(keyName string) *model.Setting {
	s := model.NewSetting()
	k := &model.Key{Name: keyName, ScanCodes: []model.ScanCode{{Scan: 0x1e}}}
	s.Keyboard.AddKey(k)

	km := model.NewKeymap(0, "Global", model.KeymapPlain)
	seq := &model.KeySeq{Actions: []model.Action{model.NewKeyAction(model.ModifiedKey{Key: k, Mod: model.EmptyModifier()})}}
	km.AddAssignment(&model.KeyAssignment{LHS: model.ModifiedKey{Key: k, Mod: model.EmptyModifier()}, RHS: seq})
	s.Keymaps = []*model.Keymap{km}
	s.Global = km
	return s
}

func TestTableRendersBoundKey(t *testing.T) {
	s := buildSetting("A")
	out, err := Table(s, "Global")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if !strings.Contains(out, "Keymap: Global") {
		t.Errorf("expected keymap header, got:\n%s", out)
	}
	if !strings.Contains(out, "A") {
		t.Errorf("expected bound key A in table, got:\n%s", out)
	}
}

func TestTableUnknownKeymapErrors(t *testing.T) {
	s := buildSetting("A")
	if _, err := Table(s, "NoSuchKeymap"); err == nil {
		t.Fatal("expected error for unknown keymap")
	}
}

func TestReloadDiffEmptyWhenUnchanged(t *testing.T) {
	s := buildSetting("A")
	if got := ReloadDiff(s, s); got != "" {
		t.Errorf("expected empty diff for identical settings, got:\n%s", got)
	}
}

func TestReloadDiffShowsChange(t *testing.T) {
	prev := buildSetting("A")
	next := buildSetting("B")
	got := ReloadDiff(prev, next)
	if got == "" {
		t.Fatal("expected non-empty diff between differing settings")
	}
	if !strings.Contains(got, "-") || !strings.Contains(got, "+") {
		t.Errorf("expected unified diff markers, got:\n%s", got)
	}
}

func TestReloadDiffNilPrevShowsAllAdded(t *testing.T) {
	next := buildSetting("A")
	got := ReloadDiff(nil, next)
	if got == "" {
		t.Fatal("expected non-empty diff for initial load")
	}
}
