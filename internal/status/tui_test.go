package tui

import (
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RyosukeMondo/yamy-go/internal/appconfig"
	"github.com/RyosukeMondo/yamy-go/internal/engine"
)

type fakeSampler struct {
	enabled    bool
	eventCount uint64
	latency    engine.LatencyStats
}

func (f *fakeSampler) Enabled() bool                     { return f.enabled }
func (f *fakeSampler) EventCount() uint64                { return f.eventCount }
func (f *fakeSampler) LatencyStats() engine.LatencyStats { return f.latency }

type fakeKeymapOf struct{ name string }

func (f *fakeKeymapOf) KeymapName() string { return f.name }

type fakeFocusOf struct {
	class, title string
	ok           bool
}

func (f *fakeFocusOf) FocusClassTitle() (string, string, bool) { return f.class, f.title, f.ok }

func newTestModel() Model {
	cfg := config.Default()
	return NewModel(cfg, &fakeSampler{enabled: true}, &fakeKeymapOf{name: "Global"}, &fakeFocusOf{}, log.New(io.Discard, "", 0), false)
}

func TestInitialState(t *testing.T) {
	m := newTestModel()
	if m.State != StateRunning {
		t.Errorf("expected StateRunning, got %d", m.State)
	}
	if m.LastError != "" {
		t.Error("expected empty error")
	}
}

func TestPollResultUpdatesRunningState(t *testing.T) {
	m := newTestModel()
	updated, cmd := m.Update(PollResultMsg{Enabled: true, KeymapName: "Global", EventCount: 42})
	model := updated.(Model)
	if model.State != StateRunning {
		t.Errorf("expected StateRunning, got %d", model.State)
	}
	if model.KeymapName != "Global" {
		t.Errorf("expected keymap Global, got %s", model.KeymapName)
	}
	if model.EventCount != 42 {
		t.Errorf("expected event count 42, got %d", model.EventCount)
	}
	if cmd == nil {
		t.Error("expected another poll scheduled")
	}
}

func TestPollResultDisabledTransition(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(PollResultMsg{Enabled: false})
	model := updated.(Model)
	if model.State != StateDisabled {
		t.Errorf("expected StateDisabled, got %d", model.State)
	}
}

func TestEngineToggledMsg(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(EngineToggledMsg{Enabled: false})
	model := updated.(Model)
	if model.State != StateDisabled {
		t.Errorf("expected StateDisabled, got %d", model.State)
	}
	updated, _ = model.Update(EngineToggledMsg{Enabled: true})
	model = updated.(Model)
	if model.State != StateRunning {
		t.Errorf("expected StateRunning, got %d", model.State)
	}
}

func TestEngineErrorTransition(t *testing.T) {
	m := newTestModel()
	updated, cmd := m.Update(EngineErrorMsg{Err: fmt.Errorf("capture device vanished")})
	model := updated.(Model)
	if model.State != StateError {
		t.Errorf("expected StateError, got %d", model.State)
	}
	if model.LastError != "capture device vanished" {
		t.Errorf("expected error message, got %q", model.LastError)
	}
	if cmd == nil {
		t.Error("expected error timeout command")
	}
}

func TestErrorTimeoutTransition(t *testing.T) {
	m := newTestModel()
	m.State = StateError
	m.LastError = "some error"
	updated, _ := m.Update(errorTimeoutMsg{})
	model := updated.(Model)
	if model.State != StateRunning {
		t.Errorf("expected StateRunning, got %d", model.State)
	}
	if model.LastError != "" {
		t.Errorf("expected empty error, got %q", model.LastError)
	}
}

func TestPollResultDuringErrorStaysError(t *testing.T) {
	m := newTestModel()
	m.State = StateError
	m.LastError = "boom"
	updated, _ := m.Update(PollResultMsg{Enabled: true})
	model := updated.(Model)
	if model.State != StateError {
		t.Errorf("expected error state to persist until timeout, got %d", model.State)
	}
}

func TestViewContainsTitle(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if !contains(view, "YAMY") {
		t.Error("expected view to contain 'YAMY'")
	}
}

func TestViewShowsRunningBadge(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if !contains(view, "Running") {
		t.Error("expected view to contain 'Running'")
	}
}

func TestViewShowsKeymapName(t *testing.T) {
	m := newTestModel()
	m.KeymapName = "Emacs"
	view := m.View()
	if !contains(view, "Emacs") {
		t.Error("expected view to contain keymap name")
	}
}

func TestViewShowsFocusWhenPresent(t *testing.T) {
	m := newTestModel()
	m.FocusClass = "xterm"
	m.FocusTitle = "bash"
	view := m.View()
	if !contains(view, "xterm") || !contains(view, "bash") {
		t.Error("expected view to contain focus class and title")
	}
}

func TestDebugLogMsgAddsEntry(t *testing.T) {
	m := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "focus", Message: "hello"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	if len(model.DebugEntries) != 1 {
		t.Fatalf("expected 1 debug entry, got %d", len(model.DebugEntries))
	}
	if model.DebugEntries[0].Message != "hello" {
		t.Errorf("expected 'hello', got %q", model.DebugEntries[0].Message)
	}
}

func TestDebugLogTruncatesToMax(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxDebugLines+10; i++ {
		entry := DebugEntry{Time: "11:00:00", Category: "debug", Message: fmt.Sprintf("line %d", i)}
		updated, _ := m.Update(DebugLogMsg{Entry: entry})
		m = updated.(Model)
	}
	if len(m.DebugEntries) != maxDebugLines {
		t.Errorf("expected %d debug entries, got %d", maxDebugLines, len(m.DebugEntries))
	}
	if m.DebugEntries[0].Message != "line 10" {
		t.Errorf("expected oldest message to be 'line 10', got %q", m.DebugEntries[0].Message)
	}
}

func TestViewShowsDebugPanel(t *testing.T) {
	m := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "focus", Message: "test message"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	view := model.View()
	if !contains(view, "Debug") {
		t.Error("expected view to contain 'Debug' panel title")
	}
	if !contains(view, "test message") {
		t.Error("expected view to contain debug message")
	}
}

func TestViewHidesDebugPanelWhenEmpty(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if contains(view, "Debug") {
		t.Error("expected view to NOT contain 'Debug' panel when no debug lines")
	}
}

func TestParseLineStructured(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53.777842 focuswatch: active window changed")
	if entry.Time != "11:27:53.777842" {
		t.Errorf("expected time '11:27:53.777842', got %q", entry.Time)
	}
	if entry.Category != "focus" {
		t.Errorf("expected category 'focus', got %q", entry.Category)
	}
	if entry.Message != "focuswatch: active window changed" {
		t.Errorf("expected message preserved, got %q", entry.Message)
	}
}

func TestThemeCycleKeyT(t *testing.T) {
	m := newTestModel()
	m.themeName = "synthwave"
	m.Config.Status.Theme = "synthwave"
	updated, cmd := m.Update(testKeyMsg("t"))
	model := updated.(Model)
	if model.themeName != "everforest" {
		t.Errorf("expected theme everforest after cycling, got %s", model.themeName)
	}
	if cmd == nil {
		t.Error("expected save config command")
	}
}

func TestLatencyFormatting(t *testing.T) {
	if got := fmtLatency(0, 0); got != "-" {
		t.Errorf("expected '-' with zero samples, got %q", got)
	}
	if got := fmtLatency(1500*time.Microsecond, 3); got != "1.5ms" {
		t.Errorf("expected '1.5ms', got %q", got)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchString(s, substr)
}

func searchString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// testKeyMsg creates a tea.KeyMsg for single-rune keys like "t", "q".
func testKeyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}
