package lang

import (
	"strings"
	"testing"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

func TestCompileSimpleKeyBinding(t *testing.T) {
	src := `
def key A = 1e
def key B = 30
keymap Global
key A = B
`
	loader := MapFileLoader{Files: map[string]string{"root.mayu": src}}
	setting, diags := Compile("root.mayu", nil, loader)
	for _, d := range diags {
		t.Logf("diag: %s", d.Error())
	}
	if setting == nil {
		t.Fatalf("expected successful compile, got diagnostics: %v", diags)
	}

	a, ok := setting.Keyboard.FindByName("A")
	if !ok {
		t.Fatal("expected key A to be defined")
	}
	rhs, ok := setting.Global.SearchAssignment(model.ModifiedKey{Key: a, Mod: model.EmptyModifier()})
	if !ok {
		t.Fatal("expected A to be bound in Global")
	}
	if len(rhs.Actions) != 1 || rhs.Actions[0].Key.Key.Name != "B" {
		t.Fatalf("expected A bound to key B, got %+v", rhs.Actions)
	}
}

func TestCompileIncludeAndDefine(t *testing.T) {
	loader := MapFileLoader{Files: map[string]string{
		"root.mayu": "include \"child.mayu\"\ndef key A = 1e\n",
		"child.mayu": "define FOO\n",
	}}
	_, diags := Compile("root.mayu", nil, loader)
	for _, d := range diags {
		if d.Fatal {
			t.Fatalf("unexpected fatal diagnostic: %v", d)
		}
	}
}

func TestCompileCircularIncludeIsFatal(t *testing.T) {
	loader := MapFileLoader{Files: map[string]string{
		"a.mayu": "include \"b.mayu\"\n",
		"b.mayu": "include \"a.mayu\"\n",
	}}
	_, diags := Compile("a.mayu", nil, loader)
	found := false
	for _, d := range diags {
		if d.Fatal && strings.Contains(d.Message, "circular") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fatal circular-include diagnostic, got %v", diags)
	}
}

func TestCompileConditionalCompilation(t *testing.T) {
	src := `
def key A = 1e
def key B = 30
keymap Global
if (FEATURE)
key A = B
else
key A = A
endif
`
	loader := MapFileLoader{Files: map[string]string{"root.mayu": src}}
	setting, diags := Compile("root.mayu", map[string]bool{"FEATURE": true}, loader)
	if setting == nil {
		t.Fatalf("expected successful compile, got %v", diags)
	}
	a, _ := setting.Keyboard.FindByName("A")
	rhs, ok := setting.Global.SearchAssignment(model.ModifiedKey{Key: a, Mod: model.EmptyModifier()})
	if !ok || rhs.Actions[0].Key.Key.Name != "B" {
		t.Fatalf("expected the FEATURE branch to win, got %+v", rhs)
	}
}

func TestCompileUnknownKeyProducesDiagnostic(t *testing.T) {
	src := `
keymap Global
key A = B
`
	loader := MapFileLoader{Files: map[string]string{"root.mayu": src}}
	setting, diags := Compile("root.mayu", nil, loader)
	if setting != nil {
		t.Fatal("expected compile failure for unresolved key reference")
	}
	if len(diags) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func TestCompileKeymapWithParentAndNoDefaultFallsThroughToParent(t *testing.T) {
	src := `
def key A = 1e
def key B = 30
keymap Global
keymap Child: Global
key A = B
`
	loader := MapFileLoader{Files: map[string]string{"root.mayu": src}}
	setting, diags := Compile("root.mayu", nil, loader)
	if setting == nil {
		t.Fatalf("expected successful compile, got diagnostics: %v", diags)
	}
	child, ok := setting.FindKeymapByName("Child")
	if !ok {
		t.Fatal("expected Child keymap to exist")
	}
	if child.Default == nil || len(child.Default.Actions) != 1 {
		t.Fatalf("expected a synthesized one-action default, got %+v", child.Default)
	}
	a := child.Default.Actions[0]
	if a.Kind != model.ActionFunction || a.Fn == nil || a.Fn.Name != "KeymapParent" {
		t.Fatalf("expected synthesized default to be &KeymapParent, got %+v", a)
	}
}

func TestCompileKeymapWithExplicitDefaultIsNotOverridden(t *testing.T) {
	src := `
def key A = 1e
def key B = 30
keymap Global
keymap Child: Global = B
key A = B
`
	loader := MapFileLoader{Files: map[string]string{"root.mayu": src}}
	setting, diags := Compile("root.mayu", nil, loader)
	if setting == nil {
		t.Fatalf("expected successful compile, got diagnostics: %v", diags)
	}
	child, ok := setting.FindKeymapByName("Child")
	if !ok {
		t.Fatal("expected Child keymap to exist")
	}
	if child.Default == nil || len(child.Default.Actions) != 1 {
		t.Fatalf("expected the explicit default to survive, got %+v", child.Default)
	}
	if child.Default.Actions[0].Kind != model.ActionKey || child.Default.Actions[0].Key.Key.Name != "B" {
		t.Fatalf("expected explicit default bound to key B, got %+v", child.Default.Actions[0])
	}
}

func TestCompileSubstitution(t *testing.T) {
	src := `
def key CapsLock = 3a
def key Control = 1d
def subst CapsLock => Control
keymap Global
`
	loader := MapFileLoader{Files: map[string]string{"root.mayu": src}}
	setting, diags := Compile("root.mayu", nil, loader)
	if setting == nil {
		t.Fatalf("expected successful compile, got %v", diags)
	}
	capsLock, _ := setting.Keyboard.FindByName("CapsLock")
	got, ok := setting.Keyboard.Substitute(model.ModifiedKey{Key: capsLock, Mod: model.EmptyModifier()})
	if !ok || got.Key.Name != "Control" {
		t.Fatalf("expected CapsLock to substitute to Control, got %+v ok=%v", got, ok)
	}
}
