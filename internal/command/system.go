package command

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/anmitsu/go-shlex"
	"github.com/RyosukeMondo/yamy-go/internal/engine"
	"github.com/RyosukeMondo/yamy-go/internal/extension"
	"github.com/RyosukeMondo/yamy-go/internal/model"
)

// runDetached starts name with args in its own process group, the same
// fire-and-forget pattern teacher's clipboard.ensureYdotoold uses for a
// background helper: the engine's consumer goroutine must not block on
// whatever &ShellExecute launches.
func (r *Registry) runDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ShellExecute: start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

// maxWait caps &Wait's argument so a malformed setting cannot hang the
// single engine consumer goroutine indefinitely.
const maxWait = 60 * time.Second

func cmdVK(r *Registry, ctx *engine.ActionContext, args []string) error {
	code, err := strconv.Atoi(stringArg(args, 0))
	if err != nil {
		return fmt.Errorf("VK: bad key code %q: %w", stringArg(args, 0), err)
	}
	if r.Engine.Injector == nil {
		return nil
	}
	sc := model.ScanCode{Scan: uint8(code & 0xff), E0: code >= 256}
	return r.Engine.Injector.InjectRaw([]model.ScanCode{sc}, ctx.Pressed)
}

func cmdWait(r *Registry, ctx *engine.ActionContext, args []string) error {
	ms := intArg(args, 0, 0)
	d := time.Duration(ms) * time.Millisecond
	if d > maxWait {
		d = maxWait
	}
	if d > 0 {
		time.Sleep(d)
	}
	return nil
}

// cmdPostMessage has no Win32 window-message equivalent on Linux; it
// surfaces as a ShowDlg-style notification so a GUI shell (out of scope)
// can still observe it instead of silently dropping it.
func cmdPostMessage(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Notify != nil {
		r.Notify.ShowDlg("postMessage:"+stringArg(args, 0), 0)
	}
	return nil
}

func cmdShellExecute(r *Registry, ctx *engine.ActionContext, args []string) error {
	line := stringArg(args, 0)
	if line == "" {
		return nil
	}
	if r.Notify != nil {
		r.Notify.ShellExecute(line)
	}
	parts, err := shlex.Split(line, true)
	if err != nil || len(parts) == 0 {
		return fmt.Errorf("ShellExecute: parse %q: %w", line, err)
	}
	return r.runDetached(parts[0], parts[1:]...)
}

func cmdSetForegroundWindow(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Notify != nil {
		r.Notify.SetForegroundWindow(ctx.FocusHWND)
	}
	if r.Window != nil {
		return r.Window.SetForeground(ctx.FocusHWND)
	}
	return nil
}

func cmdLoadSetting(r *Registry, ctx *engine.ActionContext, args []string) error {
	path := stringArg(args, 0)
	if r.Notify != nil {
		r.Notify.LoadSetting(path)
	}
	return nil
}

// cmdInvestigateCommand has no meaningful runtime effect; in the original
// it drives an interactive dialog (out of scope) that reports which
// command a pressed key would run. Logged so the binding still does
// something observable.
func cmdInvestigateCommand(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: InvestigateCommand: key=%v keymap=%v", ctx.Current.Key, ctx.Current.Keymap)
	return nil
}

func cmdMayuDialog(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Notify != nil {
		r.Notify.ShowDlg("mayu", intArg(args, 0, 0))
	}
	return nil
}

func cmdDescribeBindings(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Notify != nil {
		r.Notify.ShowDlg("describeBindings", 0)
	}
	return nil
}

func cmdHelpMessage(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Notify != nil {
		r.Notify.HelpMessage(stringArg(args, 0) != "false")
	}
	return nil
}

func cmdHelpVariable(r *Registry, ctx *engine.ActionContext, args []string) error {
	name := stringArg(args, 0)
	val, _ := r.Variable(name)
	if r.Notify != nil {
		r.Notify.ShowDlg("helpVariable:"+name+"="+val, 0)
	}
	return nil
}

func cmdLogClear(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Notify != nil {
		r.Notify.ClearLog()
	}
	return nil
}

// cmdRecenter has no analogue once the original's MDI/console "recenter
// caret" behavior is out of scope; kept as a named no-op rather than an
// unknown-function error so existing bindings still compile.
func cmdRecenter(r *Registry, ctx *engine.ActionContext, args []string) error {
	return nil
}

// cmdDirectSSTP is a deliberately unimplemented protocol bridge to an
// external desktop-mascot application; logged once per invocation rather
// than silently dropped.
func cmdDirectSSTP(r *Registry, ctx *engine.ActionContext, args []string) error {
	r.logf("command: DirectSSTP: not supported on this platform")
	return nil
}

func cmdPlugIn(r *Registry, ctx *engine.ActionContext, args []string) error {
	if r.Extensions == nil {
		return nil
	}
	name := stringArg(args, 0)
	binary := stringArg(args, 1)
	if name == "" || binary == "" {
		return fmt.Errorf("PlugIn: requires name and binary path")
	}
	return r.Extensions.Load(context.Background(), extension.Spec{
		Name:       name,
		BinaryPath: binary,
		Args:       args[min(2, len(args)):],
	})
}
