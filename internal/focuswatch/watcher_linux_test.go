//go:build linux

package focuswatch

import "testing"

func TestConsoleClassesLookup(t *testing.T) {
	if !consoleClasses["xterm"] {
		t.Fatalf("expected xterm to be classified as a console")
	}
	if consoleClasses["firefox"] {
		t.Fatalf("expected firefox to not be classified as a console")
	}
}

func TestWindowEquality(t *testing.T) {
	a := Window{HWND: 1, ThreadID: 1, Class: "xterm", Title: "bash"}
	b := Window{HWND: 1, ThreadID: 1, Class: "xterm", Title: "bash"}
	c := Window{HWND: 1, ThreadID: 1, Class: "xterm", Title: "vim"}

	if a != b {
		t.Fatalf("expected identical windows to compare equal")
	}
	if a == c {
		t.Fatalf("expected different titles to compare unequal")
	}
}
