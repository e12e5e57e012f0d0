package command

import "github.com/RyosukeMondo/yamy-go/internal/engine"

func cmdMouseMove(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Engine.Injector == nil {
		return nil
	}
	dx, dy := intArg(args, 0, 0), intArg(args, 1, 0)
	return r.Engine.Injector.InjectPointerMove(dx, dy)
}

func cmdMouseWheel(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Engine.Injector == nil {
		return nil
	}
	delta := intArg(args, 0, 0)
	return r.Engine.Injector.InjectPointerWheel(delta)
}

// cmdMouseHook has no effect here: the original's mouse-hook toggle
// controls whether the low-level OS hook forwards pointer events at all,
// and that hook is installed by internal/capture, out of a command
// primitive's reach. Kept as a named no-op so existing bindings compile.
func cmdMouseHook(r *Registry, ctx *engine.ActionContext, args []string) error {
	return nil
}
