package tui

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RyosukeMondo/yamy-go/internal/appconfig"
	"github.com/RyosukeMondo/yamy-go/internal/engine"
)

// EngineSampler is the read-only slice of *engine.Engine the status
// dashboard polls; a narrow interface keeps the TUI testable without a
// live capture/inject pipeline, mirroring the teacher's LevelSampler.
type EngineSampler interface {
	Enabled() bool
	EventCount() uint64
	LatencyStats() engine.LatencyStats
}

// KeymapName reports the currently active keymap's name, or "" if none is
// installed yet. Implemented by cmd/yamy's keymapOfEngine adapter over
// *engine.Engine; split out of
// EngineSampler so tests can fake it without a model.Keymap.
type KeymapName interface {
	KeymapName() string
}

// FocusReporter reports the focused window's class/title, for displays
// that want them without depending on internal/model.
type FocusReporter interface {
	FocusClassTitle() (class, title string, ok bool)
}

// State represents the dashboard's top-level display state.
type State int

const (
	StateRunning State = iota
	StateDisabled
	StateError
)

// Messages sent through the Bubble Tea update loop.

type errorTimeoutMsg struct{}

type configSavedMsg struct{ err error }

// pollTickMsg drives the periodic engine-state sample.
type pollTickMsg struct{}

// PollResultMsg carries one sampled snapshot of engine state into the TUI.
type PollResultMsg struct {
	Enabled     bool
	KeymapName  string
	FocusClass  string
	FocusTitle  string
	FocusOK     bool
	EventCount  uint64
	Latency     engine.LatencyStats
}

// EngineToggledMsg reports a manual enable/disable flip (e.g. from a
// registered hotkey), independent of the poll cycle.
type EngineToggledMsg struct{ Enabled bool }

// EngineErrorMsg surfaces a fatal pipeline error (capture/inject goroutine
// exit) so the dashboard can show it instead of silently going stale.
type EngineErrorMsg struct{ Err error }

// DebugEntry is a structured debug log entry.
type DebugEntry struct {
	Time     string // e.g. "11:27:53"
	Category string // e.g. "focus", "command", "ipc", "extension"
	Message  string
}

// DebugLogMsg carries a structured debug log entry into the TUI.
type DebugLogMsg struct {
	Entry DebugEntry
}

const maxDebugLines = 50

// Model is the Bubble Tea model for the status dashboard.
type Model struct {
	State      State
	LastError  string
	Config     *config.Config
	Engine     EngineSampler
	KeymapOf   KeymapName
	FocusOf    FocusReporter
	Logger     *log.Logger
	DebugMode  bool
	DebugEntries []DebugEntry

	KeymapName string
	FocusClass string
	FocusTitle string
	EventCount uint64
	Latency    engine.LatencyStats

	themeName string
}

// NewModel creates a new dashboard model.
func NewModel(cfg *config.Config, sampler EngineSampler, keymapOf KeymapName, focusOf FocusReporter, logger *log.Logger, debug bool) Model {
	themeName := cfg.Status.Theme
	applyTheme(LoadTheme(themeName))
	return Model{
		State:     StateRunning,
		Config:    cfg,
		Engine:    sampler,
		KeymapOf:  keymapOf,
		FocusOf:   focusOf,
		Logger:    logger,
		DebugMode: debug,
		themeName: themeName,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.pollCmd()
}

// Update handles messages and transitions state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			next := NextTheme(m.themeName)
			applyTheme(next)
			m.themeName = strings.ToLower(next.Name)
			m.Config.Status.Theme = m.themeName
			return m, m.saveConfigCmd()
		}

	case pollTickMsg:
		return m, m.pollCmd()

	case PollResultMsg:
		m.KeymapName = msg.KeymapName
		m.FocusClass = msg.FocusClass
		m.FocusTitle = msg.FocusTitle
		m.EventCount = msg.EventCount
		m.Latency = msg.Latency
		if msg.Enabled {
			if m.State != StateError {
				m.State = StateRunning
			}
		} else if m.State != StateError {
			m.State = StateDisabled
		}
		return m, scheduleNextPoll()

	case EngineToggledMsg:
		if msg.Enabled {
			m.State = StateRunning
		} else {
			m.State = StateDisabled
		}

	case EngineErrorMsg:
		m.State = StateError
		m.LastError = msg.Err.Error()
		return m, scheduleErrorTimeout()

	case errorTimeoutMsg:
		if m.State == StateError {
			m.State = StateRunning
		}
		m.LastError = ""

	case configSavedMsg:
		if msg.err != nil && m.Logger != nil {
			m.Logger.Printf("failed to save config: %v", msg.err)
		}

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}

func scheduleErrorTimeout() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return errorTimeoutMsg{}
	})
}

const pollInterval = 500 * time.Millisecond

func scheduleNextPoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// pollCmd samples the engine once; the empty-sampler case (tests, or a
// dashboard launched before the pipeline is wired up) still returns a
// well-formed zero snapshot rather than a nil-deref.
func (m Model) pollCmd() tea.Cmd {
	sampler := m.Engine
	keymapOf := m.KeymapOf
	focusOf := m.FocusOf
	return func() tea.Msg {
		if sampler == nil {
			return PollResultMsg{}
		}
		result := PollResultMsg{
			Enabled:    sampler.Enabled(),
			EventCount: sampler.EventCount(),
			Latency:    sampler.LatencyStats(),
		}
		if keymapOf != nil {
			result.KeymapName = keymapOf.KeymapName()
		}
		if focusOf != nil {
			result.FocusClass, result.FocusTitle, result.FocusOK = focusOf.FocusClassTitle()
		}
		return result
	}
}

func (m Model) saveConfigCmd() tea.Cmd {
	cfg := m.Config
	path := config.DefaultPath()
	return func() tea.Msg {
		return configSavedMsg{err: config.Save(path, cfg)}
	}
}

// fmtLatency renders a latency sample for the footer, "-" when no samples
// have been recorded yet.
func fmtLatency(d time.Duration, count int) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
}
