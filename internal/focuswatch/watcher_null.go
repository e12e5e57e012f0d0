package focuswatch

import "context"

// NullWatcher never reports a focus change: the Global keymap then
// governs every event, matching the engine's own "no focus recorded"
// fallback. Used in tests and whenever window tracking is disabled.
type NullWatcher struct{}

// Run blocks until ctx is cancelled.
func (NullWatcher) Run(ctx context.Context, onChange func(Window)) error {
	<-ctx.Done()
	return ctx.Err()
}
