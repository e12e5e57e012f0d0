package command

import "github.com/RyosukeMondo/yamy-go/internal/engine"

// cmdSetImeStatus/cmdSetImeString go through ImeController, which has no
// Linux default implementation: X11/Wayland input methods have no
// equivalent to Win32's IMM per-window composition-string API, so the
// binding compiles and round-trips but does nothing until a platform
// bridge implements ImeController.
func cmdSetImeStatus(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Ime == nil {
		r.logf("command: SetImeStatus: no IME controller installed")
		return nil
	}
	return r.Ime.SetStatus(ctx.FocusHWND, stringArg(args, 0) != "false")
}

func cmdSetImeString(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Ime == nil {
		r.logf("command: SetImeString: no IME controller installed")
		return nil
	}
	return r.Ime.SetString(ctx.FocusHWND, stringArg(args, 0))
}
