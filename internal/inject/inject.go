// Package inject synthesizes input events through a virtual device so
// generated engine output reaches every consumer exactly as a genuine
// keypress would. inject_linux.go backs it with a uinput virtual
// keyboard+mouse pair; the translation between internal/model's
// ScanCode and a raw Linux key code lives here since it is the exact
// inverse of internal/capture's encoding and platform-independent.
package inject

import "github.com/RyosukeMondo/yamy-go/internal/model"

// scanCodeToEvdev reverses internal/capture's keyEventFromEvdev
// encoding: a plain code is the Scan byte as-is, an E0-flagged code is
// offset by 256 into evdev's extended range.
func scanCodeToEvdev(sc model.ScanCode) uint16 {
	code := uint16(sc.Scan)
	if sc.E0 {
		code += 256
	}
	return code
}
