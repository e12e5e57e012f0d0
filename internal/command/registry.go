// Package command implements the function-call primitives a Setting's
// keyseqs can bind a key to (the `&Name(args...)` actions spec.md's
// engine dispatches through CommandExecutor). Grounded on
// original_source/src/core/function_creator.cpp's name table, collapsed
// from one C++ subclass per command into registry entries keyed by name.
package command

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/RyosukeMondo/yamy-go/internal/engine"
	"github.com/RyosukeMondo/yamy-go/internal/extension"
)

// Logger is the minimal logging capability the registry needs; satisfied
// by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// handler is one command primitive's implementation. args are the
// FunctionCall's already-parsed raw argument strings.
type handler func(r *Registry, ctx *engine.ActionContext, args []string) error

// Registry is the concrete engine.CommandExecutor: a name->handler table
// plus the capabilities (window control, IME, extensions, notifications)
// individual commands need, and the small runtime variable/toggle store
// &Variable and &Toggle operate on.
type Registry struct {
	Engine     *engine.Engine
	Window     WindowController
	Ime        ImeController
	Notify     NotificationSink
	Extensions *extension.Manager
	Logger     Logger

	mu      sync.Mutex
	vars    map[string]string
	toggles map[string]bool

	// lastWasKillLine tracks an Emacs kill-line run across
	// EmacsEditKillLinePred invocations; see emacs.go.
	lastWasKillLine bool

	handlers map[string]handler
}

// New returns a Registry with every known command name wired to its
// handler. Callers then set Window/Ime/Notify/Extensions as the platform
// provides them; a nil capability makes its commands a logged no-op.
func New(e *engine.Engine, logger Logger) *Registry {
	r := &Registry{
		Engine:  e,
		Logger:  logger,
		vars:    make(map[string]string),
		toggles: make(map[string]bool),
	}
	r.handlers = map[string]handler{
		"Default":           cmdDefault,
		"Undefined":         cmdUndefined,
		"Ignore":            cmdIgnore,
		"KeymapParent":      cmdKeymapParent,
		"KeymapWindow":      cmdKeymapWindow,
		"KeymapPrevPrefix":  cmdKeymapPrevPrefix,
		"OtherWindowClass":  cmdOtherWindowClass,
		"Prefix":            cmdPrefix,
		"CancelPrefix":      cmdCancelPrefix,
		"Keymap":            cmdKeymap,
		"Sync":              cmdSync,
		"Toggle":            cmdToggle,
		"EditNextModifier":  cmdEditNextModifier,
		"Variable":          cmdVariable,
		"Repeat":            cmdRepeat,
		"VK":                cmdVK,
		"Wait":              cmdWait,
		"PostMessage":       cmdPostMessage,
		"ShellExecute":      cmdShellExecute,
		"SetForegroundWindow": cmdSetForegroundWindow,
		"LoadSetting":       cmdLoadSetting,
		"InvestigateCommand": cmdInvestigateCommand,
		"MayuDialog":        cmdMayuDialog,
		"DescribeBindings":  cmdDescribeBindings,
		"HelpMessage":       cmdHelpMessage,
		"HelpVariable":      cmdHelpVariable,
		"LogClear":          cmdLogClear,
		"Recenter":          cmdRecenter,
		"DirectSSTP":        cmdDirectSSTP,
		"PlugIn":            cmdPlugIn,
		"WindowRaise":          cmdWindowRaise,
		"WindowLower":         cmdWindowLower,
		"WindowMinimize":      cmdWindowMinimize,
		"WindowMaximize":      cmdWindowMaximize,
		"WindowHMaximize":     cmdWindowHMaximize,
		"WindowVMaximize":     cmdWindowVMaximize,
		"WindowHVMaximize":    cmdWindowHVMaximize,
		"WindowMove":          cmdWindowMove,
		"WindowMoveTo":        cmdWindowMoveTo,
		"WindowMoveVisibly":   cmdWindowMoveVisibly,
		"WindowMonitorTo":     cmdWindowMonitorTo,
		"WindowMonitor":       cmdWindowMonitor,
		"WindowClingToLeft":   cmdWindowClingToLeft,
		"WindowClingToRight":  cmdWindowClingToRight,
		"WindowClingToTop":    cmdWindowClingToTop,
		"WindowClingToBottom": cmdWindowClingToBottom,
		"WindowClose":         cmdWindowClose,
		"WindowToggleTopMost": cmdWindowToggleTopMost,
		"WindowIdentify":      cmdWindowIdentify,
		"WindowSetAlpha":      cmdWindowSetAlpha,
		"WindowRedraw":        cmdWindowRedraw,
		"WindowResizeTo":      cmdWindowResizeTo,
		"MouseMove":   cmdMouseMove,
		"MouseWheel":  cmdMouseWheel,
		"MouseHook":   cmdMouseHook,
		"ClipboardChangeCase":   cmdClipboardChangeCase,
		"ClipboardUpcaseWord":   cmdClipboardUpcaseWord,
		"ClipboardDowncaseWord": cmdClipboardDowncaseWord,
		"ClipboardCopy":         cmdClipboardCopy,
		"EmacsEditKillLinePred": cmdEmacsEditKillLinePred,
		"EmacsEditKillLineFunc": cmdEmacsEditKillLineFunc,
		"SetImeStatus": cmdSetImeStatus,
		"SetImeString": cmdSetImeString,
	}
	return r
}

// Execute implements engine.CommandExecutor, dispatching ctx.Call.Name to
// its registered handler.
func (r *Registry) Execute(ctx *engine.ActionContext) error {
	h, ok := r.handlers[ctx.Call.Name]
	if !ok {
		return fmt.Errorf("command: unknown function %q", ctx.Call.Name)
	}
	return h(r, ctx, ctx.Call.Args)
}

// Names returns every registered command name, for internal/lang's
// typo-suggestion diagnostics (wired in by cmd/yamy via
// lang.SetKnownFunctionNames to avoid an import cycle).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

func (r *Registry) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// stringArg returns args[i], or "" if out of range.
func stringArg(args []string, i int) string {
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i]
}

// intArg parses args[i] as an integer, returning def on a missing or
// malformed argument.
func intArg(args []string, i, def int) int {
	s := stringArg(args, i)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
