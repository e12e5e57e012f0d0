//go:build linux

package inject

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/bendahl/uinput"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

const defaultUinputPath = "/dev/uinput"

// UinputWriter implements engine.Injector over a pair of virtual uinput
// devices: a full keyboard for InjectKey/InjectRaw and a relative mouse
// for the pointer methods. One mutex serializes both, matching the
// original implementation's single SendInput-equivalent call site.
type UinputWriter struct {
	mu    sync.Mutex
	kbd   uinput.Keyboard
	mouse uinput.Mouse
}

// NewUinputWriter creates the virtual keyboard and mouse at devicePath
// (defaulting to /dev/uinput when empty).
func NewUinputWriter(devicePath string) (*UinputWriter, error) {
	if devicePath == "" {
		devicePath = defaultUinputPath
	}
	kbd, err := uinput.CreateKeyboard(devicePath, []byte("yamy-virtual-keyboard"))
	if err != nil {
		return nil, fmt.Errorf("inject: create virtual keyboard: %w", err)
	}
	mouse, err := uinput.CreateMouse(devicePath, []byte("yamy-virtual-mouse"))
	if err != nil {
		_ = kbd.Close()
		return nil, fmt.Errorf("inject: create virtual mouse: %w", err)
	}
	return &UinputWriter{kbd: kbd, mouse: mouse}, nil
}

// InjectKey presses or releases the first scan code bound to key.
func (w *UinputWriter) InjectKey(key *model.Key, press bool) error {
	if key == nil || len(key.ScanCodes) == 0 {
		return nil
	}
	return w.injectCode(scanCodeToEvdev(key.ScanCodes[0]), press)
}

// InjectRaw presses or releases the first scan code of a sequence
// captured but never resolved to a bound Key (pass-through mode, step 1/2
// of the pipeline); any further codes in the sequence are not injected.
func (w *UinputWriter) InjectRaw(codes []model.ScanCode, press bool) error {
	if len(codes) == 0 {
		return nil
	}
	return w.injectCode(scanCodeToEvdev(codes[0]), press)
}

func (w *UinputWriter) injectCode(code uint16, press bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if press {
		return w.kbd.KeyDown(int(code))
	}
	return w.kbd.KeyUp(int(code))
}

// InjectPointerButton presses or releases a named mouse button.
func (w *UinputWriter) InjectPointerButton(button string, press bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch button {
	case "left":
		if press {
			return w.mouse.LeftPress()
		}
		return w.mouse.LeftRelease()
	case "right":
		if press {
			return w.mouse.RightPress()
		}
		return w.mouse.RightRelease()
	case "middle":
		if press {
			return w.mouse.MiddlePress()
		}
		return w.mouse.MiddleRelease()
	default:
		return fmt.Errorf("inject: unknown pointer button %q", button)
	}
}

// InjectPointerWheel emits a vertical scroll of delta notches.
func (w *UinputWriter) InjectPointerWheel(delta int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mouse.Wheel(false, int32(delta))
}

// InjectPointerMove emits a relative pointer move.
func (w *UinputWriter) InjectPointerMove(dx, dy int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if dx > 0 {
		if err := w.mouse.MoveRight(int32(dx)); err != nil {
			return err
		}
	} else if dx < 0 {
		if err := w.mouse.MoveLeft(int32(-dx)); err != nil {
			return err
		}
	}
	if dy > 0 {
		return w.mouse.MoveDown(int32(dy))
	} else if dy < 0 {
		return w.mouse.MoveUp(int32(-dy))
	}
	return nil
}

// InjectPointerPosition resyncs the real cursor to (x, y) via xdotool.
// uinput's mouse device only exposes relative motion (no absolute-move
// ioctl), so mid-drag absolute resyncs go through the desktop's own
// cursor-warp call instead of the virtual device, the same os/exec
// shell-out internal/clipboard and internal/focuswatch use for the
// platform calls uinput has no equivalent for. x and y are this port's
// own running estimate accumulated from injected relative deltas, not a
// read of the display server's actual cursor, so this is a best-effort
// resync rather than a precise absolute move.
func (w *UinputWriter) InjectPointerPosition(x, y int) error {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return fmt.Errorf("inject: xdotool not found: %w (install with: apt install xdotool)", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("inject: xdotool mousemove: %w", err)
	}
	return nil
}

// Close releases both virtual devices.
func (w *UinputWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	kerr := w.kbd.Close()
	merr := w.mouse.Close()
	if kerr != nil {
		return kerr
	}
	return merr
}
