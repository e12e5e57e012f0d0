package engine

import "github.com/RyosukeMondo/yamy-go/internal/model"

// getCurrentModifiers builds the "current modifier" state for this
// event (pipeline step 4): starts from the lock-state mask, then for
// each BASIC group sets it pressed iff any key the active keymap
// resolves as that modifier is currently physically pressed. Repeat is
// set iff key was one of the last two physically-pressed keys; Up/Down
// mirror the event's own polarity.
func getCurrentModifiers(km *model.Keymap, lockMask model.Modifier, history [2]*model.Key, key *model.Key, pressed bool) model.Modifier {
	mod := lockMask
	for _, group := range model.BasicGroups {
		anyPressed := false
		for _, ma := range km.ResolvedMods[group] {
			if ma.Key != nil && ma.Key.IsPressed {
				anyPressed = true
				break
			}
		}
		if anyPressed {
			mod = mod.Press(group)
		} else {
			mod = mod.Release(group)
		}
	}

	isRepeat := history[0] == key || history[1] == key
	if isRepeat {
		mod = mod.Press(model.ModRepeat)
	} else {
		mod = mod.Release(model.ModRepeat)
	}

	if pressed {
		mod = mod.Press(model.ModDown)
		mod = mod.Release(model.ModUp)
	} else {
		mod = mod.Press(model.ModUp)
		mod = mod.Release(model.ModDown)
	}
	return mod
}

// fixModifierKey implements pipeline step 5: if key is itself bound as a
// modifier in km, its own bit is forced to don't-care in mod (a modifier
// key's press/release never gates on its own state) and the assignment
// mode governing it is returned. isModifier is false (mode NotModifier)
// when key plays no modifier role in this keymap.
func fixModifierKey(km *model.Keymap, key *model.Key, mod model.Modifier) (model.Modifier, model.AssignMode) {
	for group, assigns := range km.ResolvedMods {
		for _, ma := range assigns {
			if ma.Key == key {
				return mod.DontCareBit(group), ma.Mode
			}
		}
	}
	return mod, model.NotModifier
}
