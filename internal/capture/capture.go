// Package capture turns a physical input device into Event values handed
// to a Sink (cmd/yamy's adapter converts them into engine.KeyEvent values
// for the engine). The platform-neutral pieces live
// here; capture_linux.go adapts internal/hotkey's evdev device-discovery
// logic from single-hotkey listening to full keyboard grab-and-forward.
package capture

import "context"

// Sink is the capability a Reader feeds. *engine.Engine does not satisfy
// it directly (its Push takes an engine.KeyEvent); cmd/yamy wraps the
// engine in an adapter that translates each Event.
type Sink interface {
	Push(ev Event)
}

// ScanCode mirrors model.ScanCode so this package's public API doesn't
// force every caller to import internal/model.
type ScanCode struct {
	Scan uint8
	E0   bool
	E1   bool
}

// Event is the capture-side representation of one physical transition,
// translated into engine.KeyEvent by the caller that owns both packages
// (cmd/yamy's bootstrap), keeping capture itself free of an internal/engine
// import.
type Event struct {
	ScanCodes []ScanCode
	Pressed   bool
	Repeat    bool

	IsPointer     bool
	PointerDX     int
	PointerDY     int
	PointerButton string
	PointerWheel  int
}

// Reader owns exactly one input device for the duration between Start
// and Stop; Start blocks until ctx is cancelled, the device is lost, or
// Stop is called from another goroutine.
type Reader interface {
	Start(ctx context.Context, sink Sink) error
	Stop() error
}
