package model

// ModifiedKey is the unit of input and the left-hand side of an
// assignment: a Key plus the Modifier state required (or produced) around
// it.
type ModifiedKey struct {
	Key *Key
	Mod Modifier
}

// IsEmpty reports whether this ModifiedKey has no Key, the zero value
// used for "no pending one-shot" and similar sentinel states.
func (mk ModifiedKey) IsEmpty() bool {
	return mk.Key == nil
}

func (mk ModifiedKey) String() string {
	if mk.Key == nil {
		return "<none>"
	}
	return mk.Key.Name
}
