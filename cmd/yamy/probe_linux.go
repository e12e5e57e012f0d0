//go:build linux

package main

import (
	"fmt"
	"os"

	evdev "github.com/holoplot/go-evdev"
	"github.com/pkg/term"

	"github.com/RyosukeMondo/yamy-go/internal/appconfig"
	"github.com/RyosukeMondo/yamy-go/internal/hotkey"
)

// runProbeKeys opens the keyboard device ungrabbed and prints every raw
// scan code it reads, the same "device open, terminal in cbreak mode,
// print key codes live" technique other_examples' pkg/term-based keyboard
// reader uses, repointed at this tree's evdev device discovery instead of
// its own binary.Read decode. Press 'q' to quit.
func runProbeKeys(cfg *config.Config) error {
	dev, err := hotkey.FindKeyboard(cfg.Capture.Device)
	if err != nil {
		return fmt.Errorf("find keyboard: %w", err)
	}
	defer dev.Close()

	tty, err := term.Open("/dev/tty")
	if err != nil {
		return fmt.Errorf("open controlling tty: %w", err)
	}
	if err := term.CBreakMode(tty); err != nil {
		return fmt.Errorf("set cbreak mode: %w", err)
	}
	defer tty.Restore()
	defer tty.Close()

	fmt.Println("probing raw scan codes, press 'q' to quit")

	quit := make(chan struct{})
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := tty.Read(buf)
			if err != nil || n == 0 {
				continue
			}
			if buf[0] == 'q' || buf[0] == 3 { // 'q' or Ctrl-C
				close(quit)
				return
			}
		}
	}()

	events := make(chan evdev.InputEvent)
	errs := make(chan error, 1)
	go func() {
		for {
			ev, err := dev.ReadOne()
			if err != nil {
				errs <- err
				return
			}
			events <- *ev
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case err := <-errs:
			return fmt.Errorf("read event: %w", err)
		case ev := <-events:
			if ev.Type != evdev.EV_KEY {
				continue
			}
			state := "up"
			switch ev.Value {
			case 1:
				state = "down"
			case 2:
				state = "repeat"
			}
			fmt.Fprintf(os.Stdout, "scan=0x%02x (%d) %s\n", ev.Code, ev.Code, state)
		}
	}
}
