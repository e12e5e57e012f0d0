package engine

import (
	"time"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

// ScanCode aliases model.ScanCode so capture/inject callers reading this
// package's API don't need to import internal/model just for this type.
type ScanCode = model.ScanCode

// Injector is the capability the engine generates synthesized output
// through. internal/inject implements it over a uinput virtual device;
// tests use a recording fake.
type Injector interface {
	InjectKey(key *model.Key, press bool) error
	InjectRaw(codes []model.ScanCode, press bool) error
	InjectPointerButton(button string, press bool) error
	InjectPointerWheel(delta int) error
	InjectPointerMove(dx, dy int) error
	// InjectPointerPosition resyncs the cursor to an absolute (x, y)
	// estimate. Called only while Dragging (Options.MouseEvent enabled
	// and the accumulated relative motion since a button press exceeds
	// Options.DragThreshold), pairing each relative move with an
	// absolute resync the same way the original's injectInput does for
	// a mid-drag pointer event.
	InjectPointerPosition(x, y int) error
}

// Logger is the minimal logging capability the engine needs; satisfied
// by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Current mirrors the original implementation's per-event "Current"
// record: the resolved Key, the keymap active when the event arrived,
// and whether the event originated from a pointer device.
type Current struct {
	Key       *model.Key
	Keymap    *model.Keymap
	IsPointer bool
	Pressed   bool
	Modifier  model.Modifier
	Timestamp time.Time
}

// ModifiedKey packages Current's Key+Modifier as the ModifiedKey
// SearchAssignment and the generator's matching logic expect.
func (c Current) ModifiedKey() model.ModifiedKey {
	return model.ModifiedKey{Key: c.Key, Mod: c.Modifier}
}

// ActionContext is what a FunctionCall primitive receives: the event
// context it fired in, whether this leg is the press (vs release) half,
// and the call's own parsed arguments/modifier. internal/command
// implements CommandExecutor against this.
type ActionContext struct {
	Current    Current
	Pressed    bool
	Call       *model.FunctionCall
	FocusHWND  uintptr
}

// CommandExecutor dispatches a bound function-call action. internal/command
// provides the concrete registry-backed implementation; nil is valid
// (function actions become no-ops, logged each time) for configurations
// exercised before that package is wired in.
type CommandExecutor interface {
	Execute(ctx *ActionContext) error
}
