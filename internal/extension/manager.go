// Package extension manages the touchpad-helper subprocesses a Setting can
// name (spec.md's "Extension Manager": "optionally loads/unloads touchpad
// helpers by name as settings change"). Extension internals are explicitly
// out of scope; this package only owns the thin subprocess lifecycle, the
// same "spawn, health-check, terminate" wrapper the teacher uses for its own
// managed background process.
package extension

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Spec names one extension helper: a binary to run and the arguments to
// pass it. Resolved from appconfig's extension list.
type Spec struct {
	Name       string
	BinaryPath string
	Args       []string
}

// handle tracks one running extension's process, grounded directly on
// internal/server.Server's cmd/mu pairing.
type handle struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

// Manager loads and unloads named extensions as Settings are swapped.
// Mirrors Engine::manageExtension: loads are idempotent (a name already
// loaded is a no-op) and so are unloads (an absent name is a no-op), per
// invariant "manageExtension(load=false) must be idempotent".
type Manager struct {
	Logger *log.Logger

	mu     sync.Mutex
	loaded map[string]*handle
}

// New returns a Manager with no extensions loaded.
func New(logger *log.Logger) *Manager {
	return &Manager{Logger: logger, loaded: make(map[string]*handle)}
}

// Load starts spec's process if it is not already loaded under spec.Name.
// A second Load for the same name while it is still running is a no-op,
// matching "Extension libraries are loaded at most once per setting
// generation".
func (m *Manager) Load(ctx context.Context, spec Spec) error {
	m.mu.Lock()
	h, ok := m.loaded[spec.Name]
	if ok {
		m.mu.Unlock()
		if h.running() {
			return nil
		}
		m.mu.Lock()
		delete(m.loaded, spec.Name)
	}
	m.mu.Unlock()

	h = &handle{}
	if err := h.start(ctx, spec, m.logf); err != nil {
		return fmt.Errorf("extension: load %s: %w", spec.Name, err)
	}

	m.mu.Lock()
	m.loaded[spec.Name] = h
	m.mu.Unlock()
	return nil
}

// Unload stops the named extension's process if one is running. Unloading
// a name that was never loaded, or already stopped, is a no-op.
func (m *Manager) Unload(name string) error {
	m.mu.Lock()
	h, ok := m.loaded[name]
	if ok {
		delete(m.loaded, name)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return h.stop(m.logf)
}

// UnloadAll stops every currently loaded extension, in no particular order.
// Used at engine shutdown.
func (m *Manager) UnloadAll() {
	m.mu.Lock()
	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	m.mu.Unlock()

	for _, name := range names {
		if err := m.Unload(name); err != nil {
			m.logf("extension: unload %s: %v", name, err)
		}
	}
}

// Loaded reports whether name currently has a running process, for the
// status TUI and tests.
func (m *Manager) Loaded(name string) bool {
	m.mu.Lock()
	h, ok := m.loaded[name]
	m.mu.Unlock()
	return ok && h.running()
}

func (m *Manager) logf(format string, args ...any) {
	if m.Logger != nil {
		m.Logger.Printf(format, args...)
	}
}

func (h *handle) start(ctx context.Context, spec Spec, logf func(string, ...any)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	logf("extension: starting %s (%s)", spec.Name, spec.BinaryPath)
	cmd := exec.CommandContext(ctx, spec.BinaryPath, spec.Args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", spec.BinaryPath, err)
	}
	h.cmd = cmd
	return nil
}

func (h *handle) stop(logf func(string, ...any)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cmd == nil || h.cmd.Process == nil {
		return nil
	}
	logf("extension: stopping pid %d", h.cmd.Process.Pid)

	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		logf("extension: signal error (may already be stopped): %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		h.cmd.Process.Kill()
		<-done
	}
	h.cmd = nil
	return nil
}

func (h *handle) running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil || h.cmd.Process == nil {
		return false
	}
	return h.cmd.Process.Signal(syscall.Signal(0)) == nil
}
