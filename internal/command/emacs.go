package command

import "github.com/RyosukeMondo/yamy-go/internal/engine"

// cmdEmacsEditKillLinePred implements Emacs' "kill-line" C-k double-tap
// behavior: the first press in a run kills to end-of-line (args[0]'s
// keyseq), a press immediately following another kill-line press kills
// the line's trailing newline too (args[1]'s keyseq). lastWasKillLine is
// cleared by cmdEmacsEditKillLineFunc, bound to every other key's
// before-event marker so any intervening keystroke breaks the run.
func cmdEmacsEditKillLinePred(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.mu.Lock()
	consecutive := r.lastWasKillLine
	r.lastWasKillLine = true
	r.mu.Unlock()

	name := stringArg(args, 0)
	if consecutive {
		name = stringArg(args, 1)
	}
	if name != "" && !r.Engine.FireKeySeqByName(name) {
		r.logf("command: EmacsEditKillLinePred: no keyseq named %q", name)
	}
	return nil
}

// cmdEmacsEditKillLineFunc resets the kill-line run tracked above.
func cmdEmacsEditKillLineFunc(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.mu.Lock()
	r.lastWasKillLine = false
	r.mu.Unlock()
	return nil
}
