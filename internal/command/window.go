package command

import "github.com/RyosukeMondo/yamy-go/internal/engine"

func cmdWindowRaise(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.Raise(ctx.FocusHWND) })
}

func cmdWindowLower(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.Lower(ctx.FocusHWND) })
}

func cmdWindowMinimize(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.Minimize(ctx.FocusHWND) })
}

func cmdWindowMaximize(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.Maximize(ctx.FocusHWND) })
}

// cmdWindowHMaximize/cmdWindowVMaximize: the original distinguishes
// horizontal-only and vertical-only maximize; xdotool exposes no such
// axis-limited operation, so both fall back to full Maximize and log a
// note on every call rather than silently doing nothing.
func cmdWindowHMaximize(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowHMaximize: axis-limited maximize unsupported, using full maximize")
	return cmdWindowMaximize(r, ctx, args)
}

func cmdWindowVMaximize(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowVMaximize: axis-limited maximize unsupported, using full maximize")
	return cmdWindowMaximize(r, ctx, args)
}

func cmdWindowHVMaximize(r *Registry, ctx *engine.ActionContext, args []string) error {
	return cmdWindowMaximize(r, ctx, args)
}

func cmdWindowMove(r *Registry, ctx *engine.ActionContext, args []string) error {
	dx, dy := intArg(args, 0, 0), intArg(args, 1, 0)
	return r.withWindow(func(w WindowController) error { return w.Move(ctx.FocusHWND, dx, dy) })
}

func cmdWindowMoveTo(r *Registry, ctx *engine.ActionContext, args []string) error {
	x, y := intArg(args, 1, 0), intArg(args, 2, 0)
	return r.withWindow(func(w WindowController) error { return w.MoveTo(ctx.FocusHWND, x, y) })
}

// cmdWindowMoveVisibly ensures the window is fully on-screen; without a
// monitor-geometry query (out of scope), this degrades to MoveTo(0, 0).
func cmdWindowMoveVisibly(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.MoveTo(ctx.FocusHWND, 0, 0) })
}

func cmdWindowMonitorTo(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowMonitorTo: multi-monitor placement not supported on this platform")
	return nil
}

func cmdWindowMonitor(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowMonitor: multi-monitor query not supported on this platform")
	return nil
}

func cmdWindowClingToLeft(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.MoveTo(ctx.FocusHWND, 0, intArg(args, 0, 0)) })
}

func cmdWindowClingToRight(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowClingToRight: requires screen width, not available")
	return nil
}

func cmdWindowClingToTop(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.MoveTo(ctx.FocusHWND, intArg(args, 0, 0), 0) })
}

func cmdWindowClingToBottom(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowClingToBottom: requires screen height, not available")
	return nil
}

func cmdWindowClose(r *Registry, ctx *engine.ActionContext, args []string) error {
	return r.withWindow(func(w WindowController) error { return w.Close(ctx.FocusHWND) })
}

func cmdWindowToggleTopMost(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowToggleTopMost: always-on-top not supported on this platform")
	return nil
}

func cmdWindowIdentify(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Window == nil {
		return nil
	}
	class, title, err := r.Window.Identify(ctx.FocusHWND)
	if err != nil {
		return err
	}
	if r.Notify != nil {
		r.Notify.ShowDlg("windowIdentify:"+class+": "+title, 0)
	}
	return nil
}

func cmdWindowSetAlpha(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: WindowSetAlpha: per-window transparency not supported on this platform")
	return nil
}

func cmdWindowRedraw(r *Registry, ctx *engine.ActionContext, args []string) error {
	return nil
}

func cmdWindowResizeTo(r *Registry, ctx *engine.ActionContext, args []string) error {
	w, h := intArg(args, 0, 0), intArg(args, 1, 0)
	return r.withWindow(func(wc WindowController) error { return wc.Resize(ctx.FocusHWND, w, h) })
}

func (r *Registry) withWindow(fn func(WindowController) error) error {
	if r.Window == nil {
		return nil
	}
	return fn(r.Window)
}
