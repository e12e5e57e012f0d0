package engine

import "github.com/RyosukeMondo/yamy-go/internal/model"

// pointerButtonScan maps the synthetic ScanCode a pointer-button Key
// carries (see internal/capture's matching table) back to the literal
// button name internal/inject's InjectPointerButton expects. Keyed by
// scan code rather than the Key's own Name/alias, so a config that
// renames or swaps a button (e.g. "key left = right") still resolves to
// a name the injector recognizes.
var pointerButtonScan = map[model.ScanCode]string{
	{Scan: 0x10, E0: true, E1: true}: "left",
	{Scan: 0x11, E0: true, E1: true}: "right",
	{Scan: 0x12, E0: true, E1: true}: "middle",
}

// generateKeyEvent injects a single press/release of key, maintaining
// the runtime press-count and press-state bookkeeping the rest of the
// pipeline relies on. Event keys (synthetic before/after markers) never
// reach the injector. A key whose scan code marks it as a pointer button
// is redirected to InjectPointerButton instead of InjectKey, so pointer
// buttons flow through the same keymap-driven dispatch as keyboard keys
// right up to the very last step. Grounded on Engine::generateKeyEvent.
func (e *Engine) generateKeyEvent(key *model.Key, doPress, byAssign bool) error {
	if key == nil || key.IsEvent {
		return nil
	}

	alreadyReleased := false
	switch {
	case doPress && !key.IsPressedOnWin32:
		e.currentKeyCount++
	case !doPress:
		if key.IsPressedOnWin32 {
			e.currentKeyCount--
		} else {
			alreadyReleased = true
		}
	}
	key.IsPressedOnWin32 = doPress
	if byAssign {
		key.IsPressedByAssign = doPress
	}

	sync := e.setting.Keyboard.SyncKey
	if alreadyReleased && key != sync {
		return nil
	}

	if len(key.ScanCodes) > 0 {
		if button, ok := pointerButtonScan[key.ScanCodes[0]]; ok {
			e.trackPointerButton(doPress)
			if err := e.Injector.InjectPointerButton(button, doPress); err != nil {
				return err
			}
			if doPress {
				e.lastGeneratedBasicKey = key
			} else {
				e.lastGeneratedBasicKey = nil
			}
			return nil
		}
	}

	if err := e.Injector.InjectKey(key, doPress); err != nil {
		return err
	}
	if doPress {
		e.lastGeneratedBasicKey = key
	} else {
		e.lastGeneratedBasicKey = nil
	}
	return nil
}

// generateEvents fires the synthetic before-key-down / after-key-up
// marker keys through km's own assignment table, letting a configuration
// hook the transition itself (e.g. to reset emacs kill-line state).
func (e *Engine) generateEvents(c Current, km *model.Keymap, eventKey *model.Key) {
	mkey := model.ModifiedKey{Key: eventKey, Mod: c.Modifier}
	if seq, ok := km.SearchAssignment(mkey); ok {
		e.generateKeySeqEvents(c, seq, model.PartAll)
	}
}

// generateModifierEvents (pipeline step 11) synthesizes the press/release
// events needed to bring the physical modifier state in line with mod,
// one BASIC group at a time, preferring a group's already-by-assignment-
// pressed keys over its first physical key. Releasing Alt or Windows
// right after it was the last key generated would produce a spurious
// "Alt Up-Alt" or "Windows Up-Windows" sequence some applications
// misinterpret as a menu-activation chord, so a harmless Shift (or
// Control) tap is inserted first.
func (e *Engine) generateModifierEvents(mod model.Modifier) {
	for _, group := range model.BasicGroups {
		mods := e.setting.Keyboard.ModifierKeys[group]

		switch mod.State(group) {
		case model.DontCare:
			continue

		case model.Pressed:
			noneIsPressed, noneIsPressedByAssign := true, true
			for _, k := range mods {
				if k.IsPressedOnWin32 {
					noneIsPressed = false
				}
				if k.IsPressedByAssign {
					noneIsPressedByAssign = false
				}
			}
			if !noneIsPressed {
				continue
			}
			if noneIsPressedByAssign {
				if len(mods) > 0 {
					e.generateKeyEvent(mods[0], true, false)
				}
			} else {
				for _, k := range mods {
					if k.IsPressedByAssign {
						e.generateKeyEvent(k, true, false)
					}
				}
			}

		case model.Released:
			if group == model.ModAlt || group == model.ModWindows {
				for _, k := range mods {
					if k != e.lastGeneratedBasicKey {
						continue
					}
					guard := e.setting.Keyboard.ModifierKeys[model.ModShift]
					if len(guard) == 0 {
						guard = e.setting.Keyboard.ModifierKeys[model.ModControl]
					}
					if len(guard) > 0 {
						e.generateKeyEvent(guard[0], true, false)
						e.generateKeyEvent(guard[0], false, false)
					}
					break
				}
			}
			for _, k := range mods {
				if k.IsPressedOnWin32 {
					e.generateKeyEvent(k, false, false)
				}
			}
		}
	}
}

// generateActionEvents fires one Action's press or release leg (pipeline
// step 10 body). A key action only fires the leg its own Up/Down
// modifier bits permit (explicit or don't-care); a keyseq action recurses
// with the corresponding Part; a function action invokes the command
// registry exactly when its own Up/Down bits permit, handing it a fully
// merged modifier context.
func (e *Engine) generateActionEvents(c Current, a model.Action, doPress bool) {
	switch a.Kind {
	case model.ActionKey:
		mkey := a.Key
		switch {
		case !doPress && (mkey.Mod.State(model.ModUp) == model.Pressed || mkey.Mod.State(model.ModUp) == model.DontCare):
			e.generateKeyEvent(mkey.Key, false, true)
		case doPress && (mkey.Mod.State(model.ModDown) == model.Pressed || mkey.Mod.State(model.ModDown) == model.DontCare):
			merged := c.Modifier.Merge(mkey.Mod)
			e.generateModifierEvents(merged)
			e.generateKeyEvent(mkey.Key, true, true)
		}

	case model.ActionKeySeq:
		part := model.PartUp
		if doPress {
			part = model.PartDown
		}
		e.generateKeySeqEvents(c, a.Seq, part)

	case model.ActionFunction:
		fn := a.Fn
		isUp := !doPress && (fn.Mod.State(model.ModUp) == model.Pressed || fn.Mod.State(model.ModUp) == model.DontCare)
		isDown := doPress && (fn.Mod.State(model.ModDown) == model.Pressed || fn.Mod.State(model.ModDown) == model.DontCare)
		if !isUp && !isDown {
			return
		}
		if e.Commands == nil {
			if e.Logger != nil {
				e.Logger.Printf("engine: no command registry installed, ignoring &%s", fn.Name)
			}
			return
		}
		ctx := &ActionContext{Current: c, Pressed: doPress, Call: fn}
		if fot, ok := e.focusByThread[e.activeThread]; ok {
			ctx.FocusHWND = fot.HwndFocus
		}
		if err := e.Commands.Execute(ctx); err != nil && e.Logger != nil {
			e.Logger.Printf("engine: &%s: %v", fn.Name, err)
		}
	}
}

// generateKeySeqEvents walks seq's actions for the requested Part: a
// pure-up part fires only the last action's release leg; down and all
// run every interior action as a full press-then-release tap and fire
// the final action's press leg (all also firing its release leg).
func (e *Engine) generateKeySeqEvents(c Current, seq *model.KeySeq, part model.Part) {
	if seq == nil || len(seq.Actions) == 0 {
		return
	}
	last := len(seq.Actions) - 1
	if part == model.PartUp {
		e.generateActionEvents(c, seq.Actions[last], false)
		return
	}
	for i := 0; i < last; i++ {
		e.generateActionEvents(c, seq.Actions[i], true)
		e.generateActionEvents(c, seq.Actions[i], false)
	}
	e.generateActionEvents(c, seq.Actions[last], true)
	if part == model.PartAll {
		e.generateActionEvents(c, seq.Actions[last], false)
	}
}

// generateKeyboardEvents resolves c's bound KeySeq (or the keymap's
// default) and fires it, guarding against runaway keymap recursion (a
// bound action that, through substitution or a loop of keymap switches,
// ends up generating itself indefinitely).
func (e *Engine) generateKeyboardEvents(c Current) {
	e.generationDepth++
	defer func() { e.generationDepth-- }()
	if e.generationDepth >= maxGenerationRecursion {
		if e.Logger != nil {
			e.Logger.Printf("engine: too deep keymap recursion, there may be a loop")
		}
		return
	}

	lhs, seq, ok := c.Keymap.SearchAssignmentLHS(c.ModifiedKey())
	if !ok {
		part := model.PartUp
		if c.Pressed {
			part = model.PartDown
		}
		e.generateKeySeqEvents(c, c.Keymap.Default, part)
		return
	}

	if lhs.State(model.ModUp) != model.DontCare || lhs.State(model.ModDown) != model.DontCare {
		e.generateKeySeqEvents(c, seq, model.PartAll)
		return
	}
	part := model.PartUp
	if c.Pressed {
		part = model.PartDown
	}
	e.generateKeySeqEvents(c, seq, part)
}

// FireKeySeqByName synthesizes every action of the named pooled KeySeq as
// a full press-then-release tap (model.PartAll), for command primitives
// that invoke a configured sequence directly rather than one driven by a
// physical key (e.g. &EmacsEditKillLinePred's two branches). Runs from
// inside command dispatch with mu already held, so it does not lock
// itself.
func (e *Engine) FireKeySeqByName(name string) bool {
	if e.setting == nil {
		return false
	}
	seq, ok := e.setting.KeySeqs[name]
	if !ok {
		return false
	}
	c := Current{Keymap: e.currentKeymap, Pressed: true}
	e.generateKeySeqEvents(c, seq, model.PartAll)
	return true
}

// beginGeneratingKeyboardEvents is the pipeline's step-9/10 entry point:
// it applies the configured key substitution, fires the before/after
// marker events around the actual dispatch, and restores the prefix
// keymap bookkeeping afterward. isModifier suppresses all prefix-keymap
// juggling, since a key playing a pure modifier role never participates
// in prefix state.
func (e *Engine) beginGeneratingKeyboardEvents(c Current, isModifier bool) {
	physicallyPressed := c.Modifier.State(model.ModDown) == model.Pressed

	cnew := c
	if sub, ok := e.setting.Keyboard.Substitute(c.ModifiedKey()); ok {
		cnew.Key = sub.Key
		if physicallyPressed {
			cnew.Modifier = cnew.Modifier.Release(model.ModUp).Press(model.ModDown)
		} else {
			cnew.Modifier = cnew.Modifier.Press(model.ModUp).Release(model.ModDown)
		}
		merged := sub.Mod
		for bit := model.ModifierBit(0); bit < model.ModifierBitCount; bit++ {
			if merged.State(bit) == model.DontCare && c.Modifier.State(bit) != model.DontCare {
				if c.Modifier.IsPressed(bit) {
					merged = merged.Press(bit)
				} else {
					merged = merged.Release(bit)
				}
			}
		}
		cnew.Modifier = merged
	}

	savedKeymap := e.currentKeymap
	switch {
	case isModifier || !e.isPrefix:
	case physicallyPressed: // case (3): a second press while still prefixed
		e.isPrefix = false
	default: // case (2): the prefix key's own release
		e.currentKeymap = e.defaultKeymapLocked()
	}

	e.generationDepth = 0
	beforeKey, _ := e.setting.Keyboard.FindByName(model.EventBeforeKeyDown)
	afterKey, _ := e.setting.Keyboard.FindByName(model.EventAfterKeyUp)
	if physicallyPressed && beforeKey != nil {
		e.generateEvents(cnew, cnew.Keymap, beforeKey)
	}
	e.generateKeyboardEvents(cnew)
	if !physicallyPressed && afterKey != nil {
		e.generateEvents(cnew, cnew.Keymap, afterKey)
	}

	switch {
	case isModifier:
	case !e.isPrefix: // cases (1), (4): back to the focus-resolved keymap
		e.currentKeymap = e.defaultKeymapLocked()
	case !physicallyPressed: // case (2): restore the keymap set aside above
		e.currentKeymap = savedKeymap
	}
}
