//go:build linux

package capture

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/RyosukeMondo/yamy-go/internal/hotkey"
)

// evdevReader grabs one keyboard device exclusively and forwards every
// EV_KEY transition to a Sink as an Event, generalizing
// internal/hotkey's single-hotkey linuxListener to full keyboard capture:
// every key, not just one configured code, and Grab()'d so the original
// event never reaches the desktop underneath.
type evdevReader struct {
	dev  *evdev.InputDevice
	grab bool

	mu     sync.Mutex
	closed bool
}

// NewEvdevReader opens devicePath (or auto-detects a keyboard when empty,
// via internal/hotkey.FindKeyboard) and returns a Reader that exclusively
// grabs it once Start runs, unless grab is false (diagnostic/dry-run use).
func NewEvdevReader(devicePath string, grab bool) (Reader, error) {
	dev, err := hotkey.FindKeyboard(devicePath)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return &evdevReader{dev: dev, grab: grab}, nil
}

// Start reads events until ctx is cancelled or the device is lost,
// pushing each EV_KEY transition to sink. Mirrors linuxListener.Start's
// read loop, but dispatches every key instead of filtering to one code,
// and treats EV_KEY value 2 (autorepeat) as a pressed, repeat-flagged
// event rather than ignoring it, since a remapper must forward repeats.
func (r *evdevReader) Start(ctx context.Context, sink Sink) error {
	if r.grab {
		if err := r.dev.Grab(); err != nil {
			return fmt.Errorf("capture: grab device: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		for {
			ev, err := r.dev.ReadOne()
			if err != nil {
				r.mu.Lock()
				closed := r.closed
				r.mu.Unlock()
				if closed || os.IsNotExist(err) ||
					strings.Contains(err.Error(), "file already closed") ||
					strings.Contains(err.Error(), "bad file descriptor") {
					errCh <- nil
					return
				}
				errCh <- fmt.Errorf("capture: read event: %w", err)
				return
			}

			switch ev.Type {
			case evdev.EV_KEY:
				if name, ok := pointerButtonNames[ev.Code]; ok {
					sink.Push(pointerButtonEventFromEvdev(ev, name))
				} else {
					sink.Push(keyEventFromEvdev(ev))
				}
			case evdev.EV_REL:
				sink.Push(pointerEventFromEvdev(ev))
			}
		}
	}()

	select {
	case <-ctx.Done():
		_ = r.Stop()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Stop ungrabs (best effort) and closes the device, unblocking any
// pending ReadOne in Start's goroutine.
func (r *evdevReader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.grab {
		_ = r.dev.Release()
	}
	return r.dev.Close()
}

// keyEventFromEvdev maps an evdev EV_KEY event onto this package's
// device-agnostic ScanCode: the low byte of the Linux key code as Scan,
// E0 set for codes above 255 (evdev's extended range, e.g. multimedia
// keys) so the two code spaces never collide in a Keyboard's hash
// buckets. E1 is unused on Linux; it exists only for parity with the
// PS/2 scan-code-set-1 prefix model the rest of internal/model assumes.
func keyEventFromEvdev(ev *evdev.InputEvent) Event {
	code := uint16(ev.Code)
	return Event{
		ScanCodes: []ScanCode{{Scan: uint8(code & 0xff), E0: code >= 256}},
		Pressed:   ev.Value != 0,
		Repeat:    ev.Value == 2,
	}
}

// Linux evdev button codes for the three buttons this port remaps
// (linux/input-event-codes.h); go-evdev exports no named constants for
// them, so they are declared locally here, the same way gio's Wayland
// backend does for its own button-to-name switch.
const (
	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

// pointerButtonNames maps the evdev codes this port understands to the
// button name the keymap/injector layer uses. A button not in this table
// falls through to keyEventFromEvdev and is treated as an ordinary key,
// same as today.
var pointerButtonNames = map[evdev.EvCode]string{
	btnLeft:   "left",
	btnRight:  "right",
	btnMiddle: "middle",
}

// pointerButtonScanCodes gives each remapped pointer button its own
// synthetic ScanCode, distinct from any real keyboard scan code: E0 and
// E1 both set is a combination a real keyboard can never produce (PS/2
// scan-code-set-1 prefixes are mutually exclusive), which is exactly the
// property engine.pointerButtonScan relies on to recognize these codes
// on the way back out through the injector.
var pointerButtonScanCodes = map[string]ScanCode{
	"left":   {Scan: 0x10, E0: true, E1: true},
	"right":  {Scan: 0x11, E0: true, E1: true},
	"middle": {Scan: 0x12, E0: true, E1: true},
}

// pointerButtonEventFromEvdev turns a BTN_* EV_KEY event into a pointer
// Event carrying both the button name (for the injector) and its
// synthetic ScanCode (so it can be looked up and remapped through the
// same Keyboard/Keymap tables as a physical key).
func pointerButtonEventFromEvdev(ev *evdev.InputEvent, name string) Event {
	return Event{
		IsPointer:     true,
		PointerButton: name,
		ScanCodes:     []ScanCode{pointerButtonScanCodes[name]},
		Pressed:       ev.Value != 0,
		Repeat:        ev.Value == 2,
	}
}

// pointerEventFromEvdev handles the one relative-axis case this port
// cares about for the default keyboard device (a trackpoint or
// combination device reporting EV_REL alongside EV_KEY); a dedicated
// pointer device is read by a second evdevReader in the same way.
func pointerEventFromEvdev(ev *evdev.InputEvent) Event {
	out := Event{IsPointer: true}
	switch ev.Code {
	case evdev.REL_X:
		out.PointerDX = int(ev.Value)
	case evdev.REL_Y:
		out.PointerDY = int(ev.Value)
	case evdev.REL_WHEEL:
		out.PointerWheel = int(ev.Value)
	}
	return out
}
