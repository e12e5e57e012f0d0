package command

import (
	"strings"

	atclip "github.com/atotto/clipboard"
	"github.com/RyosukeMondo/yamy-go/internal/clipboard"
	"github.com/RyosukeMondo/yamy-go/internal/engine"
)

// transformClipboard reads the system clipboard, applies fn, writes the
// result back, and pastes it into the focused application via teacher's
// internal/clipboard.PasteText transport (xdotool/wl-copy/ydotool).
func transformClipboard(fn func(string) string) error {
	text, err := atclip.ReadAll()
	if err != nil {
		return err
	}
	return clipboard.PasteText(fn(text), 0)
}

func cmdClipboardChangeCase(r *Registry, ctx *engine.ActionContext, args []string) error {
	return transformClipboard(func(s string) string {
		if s == strings.ToUpper(s) {
			return strings.ToLower(s)
		}
		return strings.ToUpper(s)
	})
}

func cmdClipboardUpcaseWord(r *Registry, ctx *engine.ActionContext, args []string) error {
	return transformClipboard(strings.ToUpper)
}

func cmdClipboardDowncaseWord(r *Registry, ctx *engine.ActionContext, args []string) error {
	return transformClipboard(strings.ToLower)
}

// cmdClipboardCopy pastes a literal string argument, the keyseq-bound
// "insert this fixed text" primitive (e.g. a signature snippet).
func cmdClipboardCopy(r *Registry, ctx *engine.ActionContext, args []string) error {
	return clipboard.PasteText(stringArg(args, 0), 0)
}
