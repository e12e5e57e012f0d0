package engine

import (
	"context"
	"sync"
	"time"

	"github.com/RyosukeMondo/yamy-go/internal/model"
	"golang.org/x/sync/errgroup"
)

// maxGenerationRecursion is the beginGeneratingKeyboardEvents recursion
// guard cap (step 12): a keymap loop aborts generation rather than
// overflowing the goroutine stack.
const maxGenerationRecursion = 64

// Engine is the per-event state machine: it owns the active Setting, all
// runtime modifier/press/prefix/one-shot state, and the single consumer
// goroutine that drains Queue and calls Injector. Every field below the
// lock comment is only ever touched while mu is held, mirroring the
// original implementation's single engine-wide critical section
// (Acquire a(&m_cs) in engine_keyboard_handler.cpp).
type Engine struct {
	Injector Injector
	Logger   Logger
	Commands CommandExecutor

	queue    *Queue
	metrics  *latencyMetrics
	cancel   context.CancelFunc
	group    *errgroup.Group

	// --- guarded by mu ---
	mu      sync.Mutex
	setting *model.Setting
	enabled bool

	focusByThread map[int]*model.FocusOfThread
	activeThread  int
	detached      map[int]bool

	// currentKeymap is the keymap the next event dispatches against; it
	// tracks the focus-resolved keymap except while a prefix key's
	// bound keymap is active (set aside and restored by
	// beginGeneratingKeyboardEvents).
	currentKeymap *model.Keymap

	lastPressed      [2]*model.Key
	currentKeyCount  int
	lockMask         model.Modifier
	eventCount       uint64

	pendingOneShot      model.ModifiedKey
	oneShotRepeatCount  int
	isPrefix            bool
	pendingModifierEdit    model.Modifier
	hasPendingModifierEdit bool
	treatModifiersTrueInPrefix bool

	generationDepth int
	lastGeneratedBasicKey *model.Key

	// pointer-drag tracking (Options.MouseEvent/DragThreshold); see drag.go
	mouseButtonsHeld int
	mouseDragging    bool
	mouseDragDX      int
	mouseDragDY      int
	mousePosX        int
	mousePosY        int
}

// New returns an Engine with no Setting installed (pass-through mode)
// until SetSetting is called.
func New(injector Injector, logger Logger) *Engine {
	return &Engine{
		Injector:      injector,
		Logger:        logger,
		queue:         NewQueue(),
		metrics:       newLatencyMetrics(),
		focusByThread: make(map[int]*model.FocusOfThread),
		detached:      make(map[int]bool),
	}
}

// Start allocates the consumer goroutine that drains the queue. Mirrors
// §4.2 start(): install capture hook, allocate queue, start consumer —
// hook installation itself is internal/capture's job; Start here is just
// "begin consuming what capture pushes".
func (e *Engine) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	e.group = g
	g.Go(func() error {
		e.consumeLoop(gctx.Done())
		return nil
	})
	return nil
}

// Stop uninstalls the consumer, draining and discarding the queue, and
// joins it.
func (e *Engine) Stop() error {
	if e.cancel != nil {
		e.cancel()
	}
	e.queue.Close()
	if e.group != nil {
		return e.group.Wait()
	}
	return nil
}

// Push is internal/capture's entry point: hand a raw event to the
// engine's queue. Capture must not block, so this never waits on the
// consumer.
func (e *Engine) Push(ev KeyEvent) {
	e.queue.Push(ev)
}

func (e *Engine) consumeLoop(done <-chan struct{}) {
	for {
		ev, ok := e.queue.Pop(done)
		if !ok {
			return
		}
		e.processEvent(ev)
	}
}

// Enable toggles whether captured events are transformed; disabled
// events pass through to the injector verbatim (pipeline step 1).
func (e *Engine) Enable(on bool) {
	e.mu.Lock()
	e.enabled = on
	e.mu.Unlock()
}

// Enabled reports the current Enable state.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// EventCount returns the number of key/pointer events processed since the
// Engine was created, a free-running counter for status displays.
func (e *Engine) EventCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eventCount
}

// SetSetting installs a new immutable Setting under the lock (§4.2
// setSetting): migrates per-key press state by name+scancode lookup,
// swaps the pointer, and re-resolves every known thread's focus keymap
// list (falling back to Global where nothing matches).
func (e *Engine) SetSetting(s *model.Setting) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.setting != nil {
		migratePressState(e.setting, s)
	}
	e.setting = s
	e.lastPressed = [2]*model.Key{}
	e.currentKeyCount = 0
	e.pendingOneShot = model.ModifiedKey{}
	e.isPrefix = false

	for tid, f := range e.focusByThread {
		f.Keymaps = s.ResolveFocusKeymaps(f.Class, f.Title)
		e.focusByThread[tid] = f
	}
	e.currentKeymap = e.currentKeymapLocked()
}

// migratePressState carries forward isPressed/isPressedOnWin32 flags
// from the outgoing Setting's keys to the incoming one by name+scancode
// match, per invariant: "Runtime mutable key flags ... migrated to the
// new Setting by name+scan-code lookup when a Setting is swapped."
func migratePressState(old, next *model.Setting) {
	if old == nil || next == nil {
		return
	}
	for _, oldKey := range old.Keyboard.Keys {
		if !oldKey.IsPressed && !oldKey.IsPressedOnWin32 {
			continue
		}
		newKey, ok := next.Keyboard.FindByName(oldKey.Name)
		if !ok || !newKey.MatchesScanCodes(oldKey.ScanCodes) {
			continue
		}
		newKey.IsPressed = oldKey.IsPressed
		newKey.IsPressedOnWin32 = oldKey.IsPressedOnWin32
		newKey.IsPressedByAssign = oldKey.IsPressedByAssign
	}
}

// CurrentSetting returns the installed Setting, or nil in pass-through
// mode.
func (e *Engine) CurrentSetting() *model.Setting {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setting
}

// SetLockState toggles the corresponding bits in the lock-modifier mask
// (IPC-delivered).
func (e *Engine) SetLockState(numLock, capsLock, scrollLock, kanaLock, imeLock, imeComp bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lockMask = setOrRelease(e.lockMask, model.ModNumLock, numLock)
	e.lockMask = setOrRelease(e.lockMask, model.ModCapsLock, capsLock)
	e.lockMask = setOrRelease(e.lockMask, model.ModScrollLock, scrollLock)
	e.lockMask = setOrRelease(e.lockMask, model.ModKanaLock, kanaLock)
	e.lockMask = setOrRelease(e.lockMask, model.ModImeLock, imeLock)
	e.lockMask = setOrRelease(e.lockMask, model.ModImeComp, imeComp)
}

// SetShowState toggles the Maximized/Minimized modifier bits (IPC
// "show" message, spec §6): isMDI routes the update to the MDI-child
// variants of those bits instead of the top-level window ones.
func (e *Engine) SetShowState(maximized, minimized, isMDI bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if isMDI {
		e.lockMask = setOrRelease(e.lockMask, model.ModMdiMaximized, maximized)
		e.lockMask = setOrRelease(e.lockMask, model.ModMdiMinimized, minimized)
		return
	}
	e.lockMask = setOrRelease(e.lockMask, model.ModMaximized, maximized)
	e.lockMask = setOrRelease(e.lockMask, model.ModMinimized, minimized)
}

func setOrRelease(m model.Modifier, bit model.ModifierBit, on bool) model.Modifier {
	if on {
		return m.Press(bit)
	}
	return m.Release(bit)
}

// SyncNotify releases the sync event (IPC-delivered). The original
// implementation wakes a blocked SignalObjectAndWait; this
// implementation just logs that a sync arrived through Logger,
// since nothing in this port blocks waiting for it (capture/inject run
// on independent goroutines, not a shared OS wait primitive).
func (e *Engine) SyncNotify() {
	if e.Logger != nil {
		e.Logger.Printf("engine: sync notify at %s", time.Now().Format(time.RFC3339))
	}
}

// SetPrefix arms or disarms prefix mode and, while armed, whether a
// would-be modifier key should instead be treated as a true modifier
// (AM_true) for the duration of the prefix. Backs the &Prefix (whose
// first argument sets ignoreModifierForPrefix), &CancelPrefix and
// &KeymapPrevPrefix command primitives, which run from inside
// command dispatch with mu already held, so this does not lock itself.
func (e *Engine) SetPrefix(on, ignoreModifierForPrefix bool) {
	e.isPrefix = on
	e.treatModifiersTrueInPrefix = ignoreModifierForPrefix
}

// SetPendingModifierEdit arms a one-shot modifier override folded into
// the very next event's modifier while a prefix is active, exercised by
// the &EditNextModifier command primitive; clear(true) disarms it. Runs
// with mu already held, same as SetPrefix above.
func (e *Engine) SetPendingModifierEdit(edit model.Modifier, clear bool) {
	if clear {
		e.hasPendingModifierEdit = false
		e.pendingModifierEdit = model.Modifier{}
		return
	}
	e.pendingModifierEdit = edit
	e.hasPendingModifierEdit = true
}

// LatencyStats returns a snapshot of the recent pipeline-latency ring
// buffer, for the status TUI.
func (e *Engine) LatencyStats() LatencyStats {
	return e.metrics.snapshot()
}
