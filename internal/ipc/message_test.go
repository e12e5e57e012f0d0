package ipc

import (
	"bytes"
	"testing"
)

func roundTrip(t *testing.T, m Message) Message {
	t.Helper()
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestSetFocusRoundTrip(t *testing.T) {
	in := Message{Type: TypeSetFocus, HWND: 0xdead, ThreadID: 7, Class: "xterm", Title: "bash", IsConsole: true}
	out := roundTrip(t, in)
	if out != in {
		t.Fatalf("round trip mismatch: in=%+v out=%+v", in, out)
	}
}

func TestLockStateRoundTrip(t *testing.T) {
	in := Message{Type: TypeLockState, CapsLock: true, ImeComp: true}
	out := roundTrip(t, in)
	if out.CapsLock != true || out.ImeComp != true || out.NumLock {
		t.Fatalf("unexpected lock state: %+v", out)
	}
}

func TestSyncRoundTrip(t *testing.T) {
	out := roundTrip(t, Message{Type: TypeSync})
	if out.Type != TypeSync {
		t.Fatalf("expected TypeSync, got %v", out.Type)
	}
}

func TestThreadAttachRoundTrip(t *testing.T) {
	out := roundTrip(t, Message{Type: TypeThreadAttach, ThreadID: 42})
	if out.ThreadID != 42 {
		t.Fatalf("expected ThreadID 42, got %d", out.ThreadID)
	}
}

func TestShowRoundTrip(t *testing.T) {
	out := roundTrip(t, Message{Type: TypeShow, Show: ShowMaximized, IsMDI: true})
	if out.Show != ShowMaximized || !out.IsMDI {
		t.Fatalf("unexpected show state: %+v", out)
	}
}

func TestCommand64RoundTrip(t *testing.T) {
	out := roundTrip(t, Message{Type: TypeCommand64, Command: 0xffffffffff})
	if out.Command != 0xffffffffff {
		t.Fatalf("expected command preserved, got %d", out.Command)
	}
}

func TestDecodeEmptyDatagramErrors(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected error decoding empty datagram")
	}
}

func TestDecodeUnknownTypeErrors(t *testing.T) {
	if _, err := Decode([]byte{255}); err == nil {
		t.Fatalf("expected error decoding unknown type")
	}
}
