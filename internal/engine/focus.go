package engine

import "github.com/RyosukeMondo/yamy-go/internal/model"

// SetFocus records (or updates) the focused window for threadID and
// re-resolves its keymap list against the active Setting. Mirrors
// Engine::setFocus: a no-op if the thread's recorded focus is already
// identical, and it also clears the thread from the detached set since a
// focus change proves the thread is alive.
func (e *Engine) SetFocus(hwnd uintptr, threadID int, class, title string, isConsole bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.detached, threadID)

	fot, ok := e.focusByThread[threadID]
	if ok && fot.HwndFocus == hwnd && fot.IsConsole == isConsole &&
		fot.Class == class && fot.Title == title {
		return
	}
	if !ok {
		fot = &model.FocusOfThread{ThreadID: threadID}
		e.focusByThread[threadID] = fot
	}
	fot.HwndFocus = hwnd
	fot.IsConsole = isConsole
	fot.Class = class
	fot.Title = title

	if e.setting != nil {
		fot.Keymaps = e.setting.ResolveFocusKeymaps(class, title)
	} else {
		fot.Keymaps = nil
	}

	e.activeThread = threadID
	e.reapDetachedLocked()
	e.currentKeymap = e.currentKeymapLocked()
}

// NameFocus implements the IPC "name" message: it updates a thread's
// recorded class/title/keymap resolution without making it the active
// thread, the distinction the original's IPC layer draws between "a
// window renamed itself" and "focus actually changed".
func (e *Engine) NameFocus(threadID int, class, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fot, ok := e.focusByThread[threadID]
	if !ok {
		fot = &model.FocusOfThread{ThreadID: threadID}
		e.focusByThread[threadID] = fot
	}
	fot.Class = class
	fot.Title = title
	if e.setting != nil {
		fot.Keymaps = e.setting.ResolveFocusKeymaps(class, title)
	}
}

// ActivateThread switches the engine's notion of "current" focused
// thread (the pipeline consults this to pick a starting keymap) and
// mirrors checkFocusWindow's thread-lookup branch: an unknown thread
// falls back to the global keymap list rather than blocking the event.
func (e *Engine) ActivateThread(threadID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeThread = threadID
	e.currentKeymap = e.currentKeymapLocked()
}

// currentKeymapLocked returns the keymap the next event should start
// dispatch from: the active thread's most-specific resolved keymap, or
// the Setting's Global keymap when the thread is unknown or has no
// window-specific match. Must be called with mu held.
func (e *Engine) currentKeymapLocked() *model.Keymap {
	if e.setting == nil {
		return nil
	}
	if fot, ok := e.focusByThread[e.activeThread]; ok {
		return fot.CurrentKeymap(e.setting.Global)
	}
	return e.setting.Global
}

// defaultKeymapLocked returns the keymap the active thread's focus
// resolves to when no prefix key is overriding it: its most-specific
// window keymap, or Global when unresolved. Must be called with mu held.
func (e *Engine) defaultKeymapLocked() *model.Keymap {
	return e.currentKeymapLocked()
}

// ThreadAttachNotify records a newly attached thread, undoing any stale
// detach record for it.
func (e *Engine) ThreadAttachNotify(threadID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.detached, threadID)
}

// ThreadDetachNotify marks threadID's focus record for removal. A record
// is reaped only while its thread is not the active one: right away if
// another thread is active, otherwise at the next SetFocus (or detach)
// made while another thread is active, matching the original's deferred
// "erase dead thread" sweep in checkFocusWindow rather than an immediate
// delete (the detach notification can race the final focus event from
// the same thread).
func (e *Engine) ThreadDetachNotify(threadID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached[threadID] = true
	e.reapDetachedLocked()
}

func (e *Engine) reapDetachedLocked() {
	for tid := range e.detached {
		if tid == e.activeThread {
			continue
		}
		delete(e.focusByThread, tid)
		delete(e.detached, tid)
	}
}

// ActiveKeymap returns the keymap the next event will dispatch against,
// for cmd/yamy's status TUI keymap display.
func (e *Engine) ActiveKeymap() *model.Keymap {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentKeymap
}

// ActivateKeymapByName force-switches the dispatch keymap to the named
// one, independent of focus resolution. Backs the &Keymap and
// &KeymapWindow command primitives, which only ever run from inside
// command dispatch with mu already held (see generateActionEvents), so
// this does not take the lock itself.
func (e *Engine) ActivateKeymapByName(name string) bool {
	if e.setting == nil {
		return false
	}
	km, ok := e.setting.FindKeymapByName(name)
	if !ok {
		return false
	}
	e.currentKeymap = km
	return true
}

// ActivateParentKeymap switches dispatch to the active keymap's Parent,
// if it has one, and immediately re-resolves c's own key against the
// parent: the point of a keymap's synthesized parent-fallthrough default
// is that the very key that missed this keymap's table falls through to
// the parent's lookup, not just the next key to arrive. Backs the
// &KeymapParent command primitive; runs with mu already held, same as
// ActivateKeymapByName above.
func (e *Engine) ActivateParentKeymap(c Current) bool {
	if e.currentKeymap == nil || e.currentKeymap.Parent == nil {
		return false
	}
	parent := e.currentKeymap.Parent
	e.currentKeymap = parent
	c.Keymap = parent
	e.generateKeyboardEvents(c)
	return true
}

// ActivateKeymapsForClass re-resolves the active thread's keymap stack as
// if its window class/title were the given values and switches dispatch
// to the result. Backs the &OtherWindowClass command primitive; runs
// with mu already held.
func (e *Engine) ActivateKeymapsForClass(class, title string) bool {
	if e.setting == nil {
		return false
	}
	kms := e.setting.ResolveFocusKeymaps(class, title)
	if len(kms) == 0 {
		return false
	}
	e.currentKeymap = kms[0]
	return true
}

// FocusSnapshot returns the recorded focus state for threadID, for the
// status TUI.
func (e *Engine) FocusSnapshot(threadID int) (model.FocusOfThread, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fot, ok := e.focusByThread[threadID]
	if !ok {
		return model.FocusOfThread{}, false
	}
	return *fot, true
}

// ActiveFocus returns the snapshot for the currently active thread, for the
// status TUI's class/title display.
func (e *Engine) ActiveFocus() (model.FocusOfThread, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fot, ok := e.focusByThread[e.activeThread]
	if !ok {
		return model.FocusOfThread{}, false
	}
	return *fot, true
}
