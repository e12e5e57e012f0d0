package alert

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWithDefaults(t *testing.T) {
	p, err := New("", "", true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.errorData) == 0 {
		t.Error("expected non-empty synthesized error tone")
	}
	if len(p.reloadData) == 0 {
		t.Error("expected non-empty synthesized reload tone")
	}
	if !p.enabled {
		t.Error("expected enabled")
	}
}

func TestNewDisabled(t *testing.T) {
	p, err := New("", "", false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.enabled {
		t.Error("expected disabled")
	}
	// Play* should be no-ops when disabled.
	p.PlayCaptureFailure()
	p.PlayReloadOK()
}

func TestNewWithCustomPaths(t *testing.T) {
	dir := t.TempDir()
	errPath := filepath.Join(dir, "custom_error.wav")
	okPath := filepath.Join(dir, "custom_reload.wav")

	if err := os.WriteFile(errPath, synthesizeTone(880, 440, 50*time.Millisecond), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(okPath, synthesizeTone(440, 880, 50*time.Millisecond), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := New(errPath, okPath, true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.errorData) == 0 {
		t.Error("expected non-empty error data from custom path")
	}
	if len(p.reloadData) == 0 {
		t.Error("expected non-empty reload data from custom path")
	}
}

func TestNewWithBadPath(t *testing.T) {
	_, err := New("/nonexistent/path/error.wav", "", true, nil)
	if err == nil {
		t.Error("expected error for nonexistent error path")
	}

	_, err = New("", "/nonexistent/path/reload.wav", true, nil)
	if err == nil {
		t.Error("expected error for nonexistent reload path")
	}
}

func TestSynthesizedTonesAreValidWav(t *testing.T) {
	data := synthesizeTone(440, 880, 100*time.Millisecond)
	if len(data) < 44 {
		t.Errorf("synthesized tone too small: %d bytes", len(data))
	}
}

func TestLoadAndNormalizePassthroughAtTargetRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "native_rate.wav")
	data := synthesizeTone(660, 660, 30*time.Millisecond)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := loadAndNormalize(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty normalized data")
	}
}
