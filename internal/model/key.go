package model

// KeyID is a Key's position in the slice owned by Keyboard, assigned by
// AddKey. Other code refers to keys by *Key, not by KeyID; nothing looks a
// Key up by its KeyID, and press state is carried across a Setting swap
// by name and scan-code lookup.
type KeyID int

// Key is a named ordered sequence of one or more ScanCodes. Plain keys
// arrive from capture; Event keys (Before, After, Prefixed, Sync) never
// do and exist only as generate-event targets.
type Key struct {
	ID        KeyID
	Name      string
	Aliases   []string
	ScanCodes []ScanCode
	IsEvent   bool

	// Runtime flags. Mutated by the engine under its lock; they belong to
	// the Key because the engine tracks press state per physical key, not
	// per event. Migrated by name+scancode lookup on a Setting swap.
	IsPressed         bool
	IsPressedOnWin32  bool
	IsPressedByAssign bool
}

// Distinguished event key names. Never bound to a physical scan code.
const (
	EventBeforeKeyDown = "before-key-down"
	EventAfterKeyUp    = "after-key-up"
	EventPrefixed      = "prefixed"
	EventSync          = "sync"
)

// MatchesScanCodes reports whether ev is exactly this Key's scan-code
// sequence. Used for full-key resolution during capture lookup.
func (k *Key) MatchesScanCodes(ev []ScanCode) bool {
	if len(ev) != len(k.ScanCodes) {
		return false
	}
	for i, sc := range k.ScanCodes {
		if sc != ev[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether ev is a strict, in-order prefix of this Key's
// scan-code sequence — used to detect partial multi-scan-code keys while
// capture is still accumulating bytes.
func (k *Key) IsPrefixOf(ev []ScanCode) bool {
	if len(ev) >= len(k.ScanCodes) {
		return false
	}
	for i, sc := range ev {
		if sc != k.ScanCodes[i] {
			return false
		}
	}
	return true
}

func (k *Key) String() string {
	if k == nil {
		return "<nil-key>"
	}
	return k.Name
}
