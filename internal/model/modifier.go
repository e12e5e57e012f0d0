package model

// ModifierBit indexes one of the 49 tri-state positions of a Modifier.
// Ranges mirror spec: BASIC generic groups, runtime state bits, and
// virtual Lock/Mod banks.
type ModifierBit int

const (
	ModShift ModifierBit = iota
	ModAlt
	ModControl
	ModWindows

	ModUp
	ModDown
	ModRepeat
	ModNumLock
	ModCapsLock
	ModScrollLock
	ModKanaLock
	ModImeLock
	ModImeComp
	ModMaximized
	ModMinimized
	ModMdiMaximized
	ModMdiMinimized
	ModTouchpad
	ModTouchpadSticky

	modLockBase // Lock0 .. Lock9
	modModBase  = modLockBase + 10 // Mod0 .. Mod19

	modifierBitCount = modModBase + 20

	// ModifierBitCount is the total number of tri-state positions a
	// Modifier spans; callers folding edits bit-by-bit range over
	// [0, ModifierBitCount).
	ModifierBitCount = modifierBitCount
)

// BasicGroups lists the modifier bits that participate in "current
// modifier" resolution and modifier-event generation, in declaration
// order (the order generateModifierEvents walks them).
var BasicGroups = []ModifierBit{ModShift, ModAlt, ModControl, ModWindows}

// Lock returns the ModifierBit for virtual lock bank n (0..9).
func Lock(n int) ModifierBit { return modLockBase + ModifierBit(n) }

// Mod returns the ModifierBit for virtual modifier bank n (0..19).
func Mod(n int) ModifierBit { return modModBase + ModifierBit(n) }

// IsVirtual reports whether bit belongs to the Lock0-9/Mod0-19 banks.
func (b ModifierBit) IsVirtual() bool {
	return b >= modLockBase && b < modifierBitCount
}

// TriState is the three possible states of one Modifier bit.
type TriState int

const (
	DontCare TriState = iota
	Pressed
	Released
)

// Modifier is a bitset over modifierBitCount tri-state positions: care
// marks which bits are asserted (pressed or released) rather than
// don't-care, and set holds the asserted value for bits where care is 1.
type Modifier struct {
	set  uint64
	care uint64
}

// Press marks bit as explicitly pressed.
func (m Modifier) Press(bit ModifierBit) Modifier {
	mask := uint64(1) << uint(bit)
	m.care |= mask
	m.set |= mask
	return m
}

// Release marks bit as explicitly released.
func (m Modifier) Release(bit ModifierBit) Modifier {
	mask := uint64(1) << uint(bit)
	m.care |= mask
	m.set &^= mask
	return m
}

// DontCareBit marks bit as don't-care.
func (m Modifier) DontCareBit(bit ModifierBit) Modifier {
	mask := uint64(1) << uint(bit)
	m.care &^= mask
	m.set &^= mask
	return m
}

// State reports the tri-state value of bit.
func (m Modifier) State(bit ModifierBit) TriState {
	mask := uint64(1) << uint(bit)
	if m.care&mask == 0 {
		return DontCare
	}
	if m.set&mask != 0 {
		return Pressed
	}
	return Released
}

// IsPressed reports whether bit is explicitly pressed.
func (m Modifier) IsPressed(bit ModifierBit) bool {
	return m.State(bit) == Pressed
}

// DoesMatch pairwise-compares every bit: don't-care (on either side)
// matches anything, otherwise the explicit states must be equal. This is
// the relaxation used by Keymap.searchAssignment's escalating tiers.
func (m Modifier) DoesMatch(other Modifier) bool {
	shared := m.care & other.care
	return (m.set & shared) == (other.set & shared)
}

// StripVirtual returns a copy with every Mod0..Mod19 bit set to
// don't-care, used by searchAssignment's second relaxation tier.
func (m Modifier) StripVirtual() Modifier {
	var virtualMask uint64
	for i := 0; i < 20; i++ {
		virtualMask |= uint64(1) << uint(Mod(i))
	}
	m.care &^= virtualMask
	m.set &^= virtualMask
	return m
}

// Empty reports whether every bit is don't-care.
func (m Modifier) Empty() bool {
	return m.care == 0
}

// EmptyModifier returns the all-don't-care Modifier (the third,
// base-key-only relaxation tier).
func EmptyModifier() Modifier { return Modifier{} }

// Merge overlays edits atop m: for every bit edits asserts (pressed or
// released), the result takes edits' value; don't-care bits in edits
// leave m unchanged. Used for the prefix "pending next-modifier edit".
func (m Modifier) Merge(edits Modifier) Modifier {
	m.set = (m.set &^ edits.care) | (edits.set & edits.care)
	m.care |= edits.care
	return m
}
