package command

import "github.com/RyosukeMondo/yamy-go/internal/engine"

// cmdDefault is a deliberate no-op: binding a key to &Default restores
// its keymap's fall-through (Keymap.Default) behavior, i.e. "do not
// override this key here", grounded on function_creator.cpp's
// FunctionData_Default entry.
func cmdDefault(r *Registry, ctx *engine.ActionContext, args []string) error {
	return nil
}

// cmdUndefined marks a key as deliberately unbound: the physical event is
// swallowed rather than passed through or mapped.
func cmdUndefined(r *Registry, ctx *engine.ActionContext, args []string) error {
	return nil
}

// cmdIgnore is functionally identical to Undefined; the original keeps
// them distinct for diagnostic naming (&Undefined documents "nothing
// should be here", &Ignore documents "this is deliberately swallowed").
func cmdIgnore(r *Registry, ctx *engine.ActionContext, args []string) error {
	return nil
}

// cmdKeymapParent switches dispatch to the active keymap's parent and
// re-resolves the triggering key against it in the same call, so a
// keymap declared with only a parent (no explicit default) transparently
// falls through instead of swallowing everything it doesn't bind itself.
func cmdKeymapParent(r *Registry, ctx *engine.ActionContext, args []string) error {
	if !r.Engine.ActivateParentKeymap(ctx.Current) {
		r.logf("command: KeymapParent: active keymap has no parent")
	}
	return nil
}

func cmdKeymapWindow(r *Registry, ctx *engine.ActionContext, args []string) error {
	name := stringArg(args, 0)
	if !r.Engine.ActivateKeymapByName(name) {
		r.logf("command: KeymapWindow: no keymap named %q", name)
	}
	return nil
}

// cmdKeymapPrevPrefix cancels prefix mode and returns dispatch to the
// focus-resolved keymap, undoing whatever &Prefix last armed.
func cmdKeymapPrevPrefix(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.Engine.SetPrefix(false, false)
	return nil
}

func cmdOtherWindowClass(r *Registry, ctx *engine.ActionContext, args []string) error {
	class := stringArg(args, 0)
	title := stringArg(args, 1)
	if !r.Engine.ActivateKeymapsForClass(class, title) {
		r.logf("command: OtherWindowClass: no keymap matches class %q", class)
	}
	return nil
}

func cmdPrefix(r *Registry, ctx *engine.ActionContext, args []string) error {
	ignoreModifier := stringArg(args, 0) == "true"
	r.Engine.SetPrefix(true, ignoreModifier)
	return nil
}

func cmdCancelPrefix(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.Engine.SetPrefix(false, false)
	return nil
}

func cmdKeymap(r *Registry, ctx *engine.ActionContext, args []string) error {
	name := stringArg(args, 0)
	if !r.Engine.ActivateKeymapByName(name) {
		r.logf("command: Keymap: no keymap named %q", name)
	}
	return nil
}

func cmdSync(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.Engine.SyncNotify()
	return nil
}

// cmdToggle flips a named boolean flag, read back through
// Registry.Toggled; the flag itself carries no engine behavior, it is a
// piece of scratch state a keyseq's bound actions test and set.
func cmdToggle(r *Registry, ctx *engine.ActionContext, args []string) error {
	name := stringArg(args, 0)
	if name == "" {
		return nil
	}
	r.mu.Lock()
	r.toggles[name] = !r.toggles[name]
	r.mu.Unlock()
	return nil
}

// Toggled reports a toggle's current state (false if never set), for
// other commands or a future &If primitive.
func (r *Registry) Toggled(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.toggles[name]
}

func cmdEditNextModifier(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.Engine.SetPendingModifierEdit(ctx.Call.Mod, false)
	return nil
}

// cmdVariable stores args[1] under name args[0] in the registry's runtime
// variable table, read back via Registry.Variable.
func cmdVariable(r *Registry, ctx *engine.ActionContext, args []string) error {
	name := stringArg(args, 0)
	if name == "" {
		return nil
	}
	r.mu.Lock()
	r.vars[name] = stringArg(args, 1)
	r.mu.Unlock()
	return nil
}

// Variable reads back a value &Variable previously stored.
func (r *Registry) Variable(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vars[name]
	return v, ok
}

// cmdRepeat re-fires the event's own key press+release pair count-1
// additional times through the injector, approximating the original's
// key-repeat-N-times primitive without a dedicated queue-level hook.
func cmdRepeat(r *Registry, ctx *engine.ActionContext, args []string) error {
	count := intArg(args, 0, 1)
	key := ctx.Current.Key
	if key == nil || r.Engine.Injector == nil {
		return nil
	}
	for i := 1; i < count; i++ {
		if err := r.Engine.Injector.InjectKey(key, true); err != nil {
			return err
		}
		if err := r.Engine.Injector.InjectKey(key, false); err != nil {
			return err
		}
	}
	return nil
}
