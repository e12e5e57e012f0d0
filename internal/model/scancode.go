// Package model holds the compiled, immutable representation of a keyboard
// rewriting program: keys, modifiers, key sequences, keymaps and the
// top-level Setting that the engine consumes. Nothing in this package
// touches the OS; it is pure data plus the lookup algorithms defined over
// it.
package model

import "fmt"

// ScanCode is a single raw device code plus extension flags. E0 and E1
// mirror the historical PS/2 scan-code-set-1 prefix bytes; E0|E1 together
// mark a synthetic or pointer-origin code that never arrives from a real
// keyboard.
type ScanCode struct {
	Scan uint8
	E0   bool
	E1   bool
}

// IsSynthetic reports whether this code can only originate from a virtual
// key created by the compiler (V_, Mxx, Lxx tokens) or a pointer-device
// button, never from a physical keyboard scan code.
func (s ScanCode) IsSynthetic() bool {
	return s.E0 && s.E1
}

func (s ScanCode) String() string {
	switch {
	case s.E0 && s.E1:
		return fmt.Sprintf("E0E1-%02X", s.Scan)
	case s.E0:
		return fmt.Sprintf("E0-%02X", s.Scan)
	case s.E1:
		return fmt.Sprintf("E1-%02X", s.Scan)
	default:
		return fmt.Sprintf("%02X", s.Scan)
	}
}

// hashBucket computes the Keymap assignment hash bucket index for the
// first ScanCode of a Key: scan % 31, per the original keymap.cpp
// HASHED_KEY_ASSIGNMENT_SIZE.
func (s ScanCode) hashBucket() int {
	return int(s.Scan) % keyAssignmentBuckets
}
