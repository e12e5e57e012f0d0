// Command yamy is the user-space keyboard remapper daemon: it grabs a
// keyboard device via evdev, compiles a .mayu-style rewriting config, runs
// it through internal/engine, and injects the result through a uinput
// virtual device. A Bubble Tea status dashboard and a Unix-socket IPC
// listener run alongside it. Structure grounded on teacher's
// cmd/palaver/main.go: debug logger setup, config load, component
// construction, tea.Program wiring, clean shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sys/unix"

	"github.com/RyosukeMondo/yamy-go/internal/alert"
	"github.com/RyosukeMondo/yamy-go/internal/appconfig"
	"github.com/RyosukeMondo/yamy-go/internal/capture"
	"github.com/RyosukeMondo/yamy-go/internal/command"
	"github.com/RyosukeMondo/yamy-go/internal/describe"
	"github.com/RyosukeMondo/yamy-go/internal/engine"
	"github.com/RyosukeMondo/yamy-go/internal/extension"
	"github.com/RyosukeMondo/yamy-go/internal/focuswatch"
	"github.com/RyosukeMondo/yamy-go/internal/inject"
	"github.com/RyosukeMondo/yamy-go/internal/ipc"
	"github.com/RyosukeMondo/yamy-go/internal/lang"
	"github.com/RyosukeMondo/yamy-go/internal/model"
	tui "github.com/RyosukeMondo/yamy-go/internal/status"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

// defineFlag collects repeated -D name=value command-line symbol
// overrides, the flag.Value equivalent of the original's .mayu0..mayuN
// argv triples.
type defineFlag []config.DefineSymbol

func (d *defineFlag) String() string {
	if d == nil {
		return ""
	}
	parts := make([]string, len(*d))
	for i, sym := range *d {
		parts[i] = sym.Name + "=" + sym.Value
	}
	return strings.Join(parts, ",")
}

func (d *defineFlag) Set(s string) error {
	name, value, _ := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("-D: expected name=value, got %q", s)
	}
	*d = append(*d, config.DefineSymbol{Name: name, Value: value})
	return nil
}

func main() {
	var (
		debug      = flag.Bool("debug", false, "enable debug logging to stderr / status panel")
		showVer    = flag.Bool("version", false, "print version and exit")
		dumpKeymap = flag.String("dump-keymap", "", "print the named keymap's bindings and exit")
		probeKeys  = flag.Bool("probe-keys", false, "print raw scan codes read from the keyboard device and exit")
		defines    defineFlag
	)
	flag.Var(&defines, "D", "define a compile-time symbol as name=value (repeatable)")
	flag.BoolVar(debug, "d", false, "shorthand for -debug")
	flag.BoolVar(showVer, "v", false, "shorthand for -version")
	flag.Parse()

	if *showVer {
		fmt.Println("yamy", version)
		return
	}

	var dbg *log.Logger
	if *debug {
		dbg = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
	} else {
		dbg = log.New(io.Discard, "", 0)
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *debug {
		cfg.Debug = true
	}
	if path := flag.Arg(0); path != "" {
		cfg.ConfigFile = path
	}

	if *probeKeys {
		if err := runProbeKeys(cfg); err != nil {
			log.Fatalf("probe-keys: %v", err)
		}
		return
	}

	seedSymbols := make(map[string]bool, len(cfg.Defines)+len(defines))
	for _, d := range cfg.Defines {
		seedSymbols[d.Name] = true
	}
	for _, d := range defines {
		seedSymbols[d.Name] = true
	}

	eng := engine.New(nil, dbg)
	registry := command.New(eng, dbg)
	registry.Window = command.XdotoolWindowController{}
	eng.Commands = registry
	lang.SetKnownFunctionNames(registry.Names())

	setting, diags := lang.Compile(cfg.ConfigFile, seedSymbols, lang.OSFileLoader{})
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Error())
		}
	}
	if setting == nil {
		log.Fatalf("compile %s: no usable setting (see diagnostics above)", cfg.ConfigFile)
	}

	if *dumpKeymap != "" {
		out, err := describe.Table(setting, *dumpKeymap)
		if err != nil {
			log.Fatalf("dump-keymap: %v", err)
		}
		fmt.Print(out)
		return
	}

	injector, err := inject.NewUinputWriter("")
	if err != nil {
		log.Fatalf("create uinput writer: %v", err)
	}
	defer injector.Close()
	eng.Injector = injector

	chimePlayer, err := alert.New("", "", true, dbg)
	if err != nil {
		log.Fatalf("create chime player: %v", err)
	}

	extManager := extension.New(dbg)
	registry.Extensions = extManager
	registry.Notify = loggingNotifier{dbg: dbg}

	eng.SetSetting(setting)
	eng.Enable(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		log.Fatalf("start engine: %v", err)
	}
	defer eng.Stop()

	reader, err := capture.NewEvdevReader(cfg.Capture.Device, true)
	if err != nil {
		log.Fatalf("open capture device: %v", err)
	}
	go func() {
		if err := reader.Start(ctx, captureSink{eng: eng}); err != nil && ctx.Err() == nil {
			dbg.Printf("capture: reader stopped: %v", err)
			chimePlayer.PlayCaptureFailure()
		}
	}()
	defer reader.Stop()

	var watcher focuswatch.Watcher
	if _, err := exec.LookPath("xprop"); err != nil {
		dbg.Printf("focuswatch: xprop not found, focus tracking disabled: %v", err)
		watcher = focuswatch.NullWatcher{}
	} else {
		watcher = focuswatch.NewXpropWatcher()
	}
	go func() {
		err := watcher.Run(ctx, func(w focuswatch.Window) {
			eng.SetFocus(w.HWND, w.ThreadID, w.Class, w.Title, w.IsConsole)
		})
		if err != nil && ctx.Err() == nil {
			dbg.Printf("focuswatch: stopped: %v", err)
		}
	}()

	sid, _ := unix.Getsid(0)
	ipcListener, err := ipc.NewListener(sid)
	if err != nil {
		dbg.Printf("ipc: listener unavailable: %v", err)
	} else {
		ipcListener.Logger = dbg
		defer ipcListener.Close()
		go func() {
			if err := ipcListener.Serve(eng); err != nil && ctx.Err() == nil {
				dbg.Printf("ipc: serve stopped: %v", err)
			}
		}()
	}

	for _, extCfg := range cfg.Extensions {
		if !extCfg.AutoStart {
			continue
		}
		spec := extension.Spec{Name: extCfg.Name, BinaryPath: extCfg.BinaryPath, Args: extCfg.Args}
		if err := extManager.Load(ctx, spec); err != nil {
			dbg.Printf("extension: %s: %v", extCfg.Name, err)
		}
	}
	defer extManager.UnloadAll()

	tuiModel := tui.NewModel(cfg, eng, keymapOfEngine{eng: eng}, focusOfEngine{eng: eng}, dbg, *debug)
	p := tea.NewProgram(tuiModel, tea.WithAltScreen())

	if *debug {
		dbg.SetOutput(tui.NewLogWriter(p))
	}

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sighup:
				reloadSetting(ctx, eng, cfg, seedSymbols, chimePlayer, dbg)
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		log.Fatalf("TUI error: %v", err)
	}

	cancel()
}

// reloadSetting recompiles cfg.ConfigFile and, if it compiles cleanly,
// swaps it into eng and logs a unified diff against the previous
// Describe() dump. A failed compile leaves the running setting untouched
// and sounds the capture-failure chime, matching spec's "reload failure
// keeps the prior setting live" behavior.
func reloadSetting(_ context.Context, eng *engine.Engine, cfg *config.Config, seedSymbols map[string]bool, chimePlayer *alert.Player, dbg *log.Logger) {
	dbg.Printf("engine: reload requested for %s", cfg.ConfigFile)
	next, diags := lang.Compile(cfg.ConfigFile, seedSymbols, lang.OSFileLoader{})
	for _, d := range diags {
		dbg.Printf("engine: reload diagnostic: %s", d.Error())
	}
	if next == nil {
		dbg.Printf("engine: reload failed, keeping previous setting")
		chimePlayer.PlayCaptureFailure()
		return
	}
	if diff := describe.ReloadDiff(eng.CurrentSetting(), next); diff != "" {
		dbg.Printf("engine: reload diff:\n%s", diff)
	}
	eng.SetSetting(next)
	chimePlayer.PlayReloadOK()
}

// captureSink adapts internal/capture's transport-neutral Event into the
// engine's KeyEvent, the translation capture.go's package doc explicitly
// leaves to "the caller that owns both packages".
type captureSink struct {
	eng *engine.Engine
}

func (s captureSink) Push(ev capture.Event) {
	codes := make([]model.ScanCode, len(ev.ScanCodes))
	for i, sc := range ev.ScanCodes {
		codes[i] = model.ScanCode{Scan: sc.Scan, E0: sc.E0, E1: sc.E1}
	}
	s.eng.Push(engine.KeyEvent{
		ScanCodes:     codes,
		Pressed:       ev.Pressed,
		Repeat:        ev.Repeat,
		IsPointer:     ev.IsPointer,
		PointerDX:     ev.PointerDX,
		PointerDY:     ev.PointerDY,
		PointerButton: ev.PointerButton,
		PointerWheel:  ev.PointerWheel,
	})
}

// keymapOfEngine adapts *engine.Engine's ActiveKeymap() to the narrow
// tui.KeymapName interface the status dashboard depends on for testability.
type keymapOfEngine struct {
	eng *engine.Engine
}

func (k keymapOfEngine) KeymapName() string {
	km := k.eng.ActiveKeymap()
	if km == nil {
		return ""
	}
	return km.Name
}

// focusOfEngine adapts *engine.Engine's ActiveFocus() to tui.FocusReporter.
type focusOfEngine struct {
	eng *engine.Engine
}

func (f focusOfEngine) FocusClassTitle() (class, title string, ok bool) {
	focus, ok := f.eng.ActiveFocus()
	if !ok {
		return "", "", false
	}
	return focus.Class, focus.Title, true
}

// loggingNotifier implements command.NotificationSink by logging every
// notification; there is no GUI shell in this port to show a dialog or
// balloon, so this is the observable substitute debug mode surfaces.
type loggingNotifier struct {
	dbg *log.Logger
}

func (n loggingNotifier) ShellExecute(cmd string)        { n.dbg.Printf("notify: ShellExecute %s", cmd) }
func (n loggingNotifier) LoadSetting(path string)        { n.dbg.Printf("notify: LoadSetting %s", path) }
func (n loggingNotifier) HelpMessage(show bool)          { n.dbg.Printf("notify: HelpMessage show=%v", show) }
func (n loggingNotifier) ShowDlg(kind string, cmd int)   { n.dbg.Printf("notify: ShowDlg %s cmd=%d", kind, cmd) }
func (n loggingNotifier) SetForegroundWindow(hwnd uintptr) {
	n.dbg.Printf("notify: SetForegroundWindow %d", hwnd)
}
func (n loggingNotifier) ClearLog() { n.dbg.Printf("notify: ClearLog") }
