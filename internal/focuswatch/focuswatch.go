// Package focuswatch supplies the source of foreground-window-changed
// events internal/engine's focus tracker consumes: enumerating X11/Win32
// window hierarchies is explicitly out-of-scope platform glue, so this
// package is a thin, swappable capability rather than part of the engine
// itself.
package focuswatch

import "context"

// Window is one focus-changed observation. X11 has no per-thread window
// ownership the way Win32 does, so ThreadID stands in for it using the
// window id itself, which is unique and stable for the window's
// lifetime — the same role model.FocusOfThread.ThreadID plays upstream.
type Window struct {
	HWND      uintptr
	ThreadID  int
	Class     string
	Title     string
	IsConsole bool
}

// Watcher polls (or subscribes to) the active window and reports every
// distinct change to onChange until ctx is cancelled.
type Watcher interface {
	Run(ctx context.Context, onChange func(Window)) error
}
