package engine

import (
	"time"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

// processEvent is the per-event state machine entry point, grounded on
// Engine::keyboardHandler's per-iteration body: gate, identify, count,
// resolve modifiers, dispatch on assignment mode, generate, drain, and
// record latency, all under the engine's single lock.
func (e *Engine) processEvent(ev KeyEvent) {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.metrics.record(time.Since(start)) }()

	e.eventCount++

	if ev.IsPointer {
		e.processPointerEvent(ev, start)
		return
	}

	// step 1: gate
	if !e.enabled || e.setting == nil {
		e.injectRawLocked(ev)
		e.updateLastPressedLocked(nil)
		return
	}
	if e.currentKeymap == nil {
		e.injectRawLocked(ev)
		if e.Logger != nil {
			e.Logger.Printf("engine: internal error: currentKeymap is nil")
		}
		e.updateLastPressedLocked(nil)
		return
	}

	c := Current{Keymap: e.currentKeymap, Pressed: ev.Pressed, Timestamp: start}

	// step 2: identify
	key, found := e.setting.Keyboard.FindByScanCodes(ev.ScanCodes)
	if !found {
		if prefixKey, ok := e.setting.Keyboard.FindPrefixKey(ev.ScanCodes); ok {
			_ = prefixKey
			return
		}
	}
	c.Key = key

	// step 3: press counter
	if key != nil {
		switch {
		case !key.IsPressed && ev.Pressed:
			e.currentKeyCount++
		case key.IsPressed && !ev.Pressed:
			e.currentKeyCount--
		}
		key.IsPressed = ev.Pressed
	}

	// steps 4-8, 13: resolve modifiers, dispatch on assignment mode, drain
	e.dispatchResolvedKey(c, ev, key)

	// step 14 (history): update last-pressed rolling window
	if ev.Pressed {
		e.updateLastPressedLocked(key)
	} else {
		e.updateLastPressedLocked(nil)
	}
}

// dispatchResolvedKey runs pipeline steps 4-8 (modifier resolution and
// assignment-mode dispatch) and step 13 (drain) against a key already
// identified by the caller. Shared by the keyboard and pointer-button
// paths, so a remapped pointer button goes through exactly the same
// modifier/one-shot/generation machinery a keyboard key does.
func (e *Engine) dispatchResolvedKey(c Current, ev KeyEvent, key *model.Key) {
	// step 4: build current modifier
	c.Modifier = getCurrentModifiers(c.Keymap, e.lockMask, e.lastPressed, key, ev.Pressed)

	// step 5: fix modifier key (self-modifier forced don't-care, mode read out)
	fixedMod, am := fixModifierKey(c.Keymap, key, c.Modifier)
	c.Modifier = fixedMod
	isModifier := am != model.NotModifier

	// step 6: apply pending prefix edit
	if e.isPrefix {
		if isModifier && e.treatModifiersTrueInPrefix {
			am = model.True
		}
		if e.hasPendingModifierEdit {
			c.Modifier = e.pendingModifierEdit.Merge(c.Modifier)
		}
	}

	// step 7/8: dispatch on assignment mode
	switch am {
	case model.True:
		// true modifier: press state already recorded above, no
		// key-seq generation for the modifier key itself.

	case model.OneShot, model.OneShotRepeatable:
		e.dispatchOneShot(c, am, ev.Pressed)

	default:
		switch {
		case key != nil:
			if ev.Pressed {
				e.pendingOneShot = model.ModifiedKey{}
			}
			e.beginGeneratingKeyboardEvents(c, isModifier)
		case ev.IsPointer:
			e.injectRawPointerLocked(ev)
		default:
			e.injectRawLocked(ev)
		}
	}

	// step 13: drain
	if e.currentKeyCount <= 0 {
		e.generateModifierEvents(model.Modifier{})
		e.currentKeyCount = 0
		e.pendingOneShot = model.ModifiedKey{}
		if !e.lockMask.IsPressed(model.ModTouchpad) {
			e.lockMask = e.lockMask.Release(model.ModTouchpadSticky)
		}
	}
}

// dispatchOneShot implements the one-shot / one-shot-repeatable
// assignment modes (step 8's third branch): a press either arms the
// one-shot key or, for the repeatable variant, re-fires it once the
// configured repeat delay has elapsed; a release replays the armed
// key's press-then-release pair and disarms it.
func (e *Engine) dispatchOneShot(c Current, am model.AssignMode, pressed bool) {
	if pressed {
		if am == model.OneShotRepeatable && e.pendingOneShot.Key == c.Key {
			if e.oneShotRepeatCount >= e.setting.Options.OneShotRepeatableDelay {
				e.beginGeneratingKeyboardEvents(c, false)
			}
			e.oneShotRepeatCount++
		} else {
			e.pendingOneShot = c.ModifiedKey()
			e.oneShotRepeatCount = 0
		}
		return
	}

	if e.pendingOneShot.Key != nil {
		down := c
		down.Modifier = e.pendingOneShot.Mod.Release(model.ModUp).Press(model.ModDown)
		e.beginGeneratingKeyboardEvents(down, false)

		up := c
		up.Modifier = e.pendingOneShot.Mod.Press(model.ModUp).Release(model.ModDown)
		e.beginGeneratingKeyboardEvents(up, false)
	}
	e.pendingOneShot = model.ModifiedKey{}
	e.oneShotRepeatCount = 0
}

// processPointerEvent handles a mouse-origin event. A pointer button
// carries a synthetic ScanCode (see internal/capture's pointer-button
// table); when it resolves to a bound Key, it runs through the same
// modifier/keymap/one-shot dispatch a keyboard key does, so button
// remapping, modifiers and `def key` substitution all apply to it.
// Wheel and relative-motion events (no ScanCodes) and an unbound button
// fall straight through, unchanged from before.
func (e *Engine) processPointerEvent(ev KeyEvent, start time.Time) {
	if !e.enabled || e.setting == nil || e.currentKeymap == nil || len(ev.ScanCodes) == 0 {
		e.injectRawPointerLocked(ev)
		return
	}

	key, found := e.setting.Keyboard.FindByScanCodes(ev.ScanCodes)
	if !found {
		e.injectRawPointerLocked(ev)
		return
	}

	switch {
	case !key.IsPressed && ev.Pressed:
		e.currentKeyCount++
	case key.IsPressed && !ev.Pressed:
		e.currentKeyCount--
	}
	key.IsPressed = ev.Pressed

	c := Current{Keymap: e.currentKeymap, Key: key, IsPointer: true, Pressed: ev.Pressed, Timestamp: start}
	e.dispatchResolvedKey(c, ev, key)

	if ev.Pressed {
		e.updateLastPressedLocked(key)
	} else {
		e.updateLastPressedLocked(nil)
	}
}

func (e *Engine) injectRawPointerLocked(ev KeyEvent) {
	if e.Injector == nil {
		return
	}
	switch {
	case ev.PointerButton != "":
		e.trackPointerButton(ev.Pressed)
		e.Injector.InjectPointerButton(ev.PointerButton, ev.Pressed)
	case ev.PointerWheel != 0:
		e.Injector.InjectPointerWheel(ev.PointerWheel)
	case ev.PointerDX != 0 || ev.PointerDY != 0:
		dragging := e.trackPointerMove(ev.PointerDX, ev.PointerDY)
		e.Injector.InjectPointerMove(ev.PointerDX, ev.PointerDY)
		if dragging {
			e.Injector.InjectPointerPosition(e.mousePosX, e.mousePosY)
		}
	}
}

func (e *Engine) injectRawLocked(ev KeyEvent) {
	if e.Injector == nil || ev.Injected {
		return
	}
	e.Injector.InjectRaw(ev.ScanCodes, ev.Pressed)
}

func (e *Engine) updateLastPressedLocked(k *model.Key) {
	e.lastPressed[1] = e.lastPressed[0]
	e.lastPressed[0] = k
}
