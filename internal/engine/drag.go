package engine

// trackPointerButton folds a pointer button's press/release into the
// engine's Dragging-mode bookkeeping (spec glossary: "the internal mode
// entered when a pointer button is held and the cursor moves past the
// configured threshold"). The accumulator resets whenever the held-button
// count returns to zero, so releasing every button always exits Dragging
// and the next button press starts a fresh threshold count. A no-op
// unless Options.MouseEvent is set.
func (e *Engine) trackPointerButton(pressed bool) {
	if e.setting == nil || !e.setting.Options.MouseEvent {
		return
	}
	if pressed {
		e.mouseButtonsHeld++
		if e.mouseButtonsHeld == 1 {
			e.mouseDragDX, e.mouseDragDY = 0, 0
			e.mouseDragging = false
		}
		return
	}
	if e.mouseButtonsHeld > 0 {
		e.mouseButtonsHeld--
	}
	if e.mouseButtonsHeld == 0 {
		e.mouseDragging = false
		e.mouseDragDX, e.mouseDragDY = 0, 0
	}
}

// trackPointerMove folds one relative-motion sample into the running
// virtual cursor position and, while a button is held, the drag
// accumulator, entering Dragging once the accumulated displacement
// exceeds Options.DragThreshold. Returns whether this move should be
// paired with an absolute-position resync. The virtual cursor position
// is this port's own running estimate (uinput exposes no way to read the
// real one back), seeded at (0, 0) and accumulated purely from injected
// relative deltas — an approximation, not a true cursor read.
func (e *Engine) trackPointerMove(dx, dy int) bool {
	e.mousePosX += dx
	e.mousePosY += dy
	if e.setting == nil || !e.setting.Options.MouseEvent || e.mouseButtonsHeld == 0 {
		return false
	}
	e.mouseDragDX += dx
	e.mouseDragDY += dy
	if !e.mouseDragging && abs(e.mouseDragDX)+abs(e.mouseDragDY) > e.setting.Options.DragThreshold {
		e.mouseDragging = true
	}
	return e.mouseDragging
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
