// Package ipc implements the datagram notification channel that
// delivers focus changes, lock-state changes, thread lifecycle events,
// sync pulses, and extension-originated commands into the engine: the
// out-of-process side of spec §4.7/§6. A Unix datagram socket plays the
// role the original's named-pipe-per-session channel did; session
// scoping and the wire record shapes are unchanged.
package ipc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Type tags a Message's payload, mirroring the fixed set spec §4.7
// names: setFocus, name, lockState, sync, threadAttach, threadDetach,
// command32/command64, show, log.
type Type uint8

const (
	TypeSetFocus Type = iota
	TypeName
	TypeLockState
	TypeSync
	TypeThreadAttach
	TypeThreadDetach
	TypeCommand32
	TypeCommand64
	TypeShow
	TypeLog
)

func (t Type) String() string {
	switch t {
	case TypeSetFocus:
		return "setFocus"
	case TypeName:
		return "name"
	case TypeLockState:
		return "lockState"
	case TypeSync:
		return "sync"
	case TypeThreadAttach:
		return "threadAttach"
	case TypeThreadDetach:
		return "threadDetach"
	case TypeCommand32:
		return "command32"
	case TypeCommand64:
		return "command64"
	case TypeShow:
		return "show"
	case TypeLog:
		return "log"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ShowState is the window-state enum the "show" message payload carries.
type ShowState uint8

const (
	ShowNormal ShowState = iota
	ShowMaximized
	ShowMinimized
)

// maxStringLen bounds a decoded class/title/log string, guarding against
// a corrupt or hostile length prefix forcing an unbounded allocation.
const maxStringLen = 4096

// Message is every IPC record shape folded into one struct, tagged by
// Type; only the fields relevant to Type are meaningful, the same
// tagged-union discipline internal/model.Action uses for its Kind field.
type Message struct {
	Type Type

	// setFocus / name
	HWND      uintptr
	ThreadID  int
	Class     string
	Title     string
	IsConsole bool

	// lockState
	NumLock, CapsLock, ScrollLock, KanaLock, ImeLock, ImeComp bool

	// show
	Show  ShowState
	IsMDI bool

	// command32 / command64
	Command uint64

	// log
	LogText string
}

// Encode writes msg's wire representation: a Type byte followed by the
// fixed and length-prefixed fields its payload uses. Used by the
// extension-helper / test-client side of the channel.
func (m Message) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte(byte(m.Type))

	switch m.Type {
	case TypeSetFocus, TypeName:
		writeUint64(&buf, uint64(m.HWND))
		writeInt32(&buf, int32(m.ThreadID))
		writeString(&buf, m.Class)
		writeString(&buf, m.Title)
		writeBool(&buf, m.IsConsole)

	case TypeLockState:
		writeBool(&buf, m.NumLock)
		writeBool(&buf, m.CapsLock)
		writeBool(&buf, m.ScrollLock)
		writeBool(&buf, m.KanaLock)
		writeBool(&buf, m.ImeLock)
		writeBool(&buf, m.ImeComp)

	case TypeSync:
		// no payload

	case TypeThreadAttach, TypeThreadDetach:
		writeInt32(&buf, int32(m.ThreadID))

	case TypeCommand32, TypeCommand64:
		writeUint64(&buf, m.Command)

	case TypeShow:
		buf.WriteByte(byte(m.Show))
		writeBool(&buf, m.IsMDI)

	case TypeLog:
		writeString(&buf, m.LogText)

	default:
		return fmt.Errorf("ipc: encode: unknown message type %v", m.Type)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Decode parses exactly one Message from b, the payload of a single
// received datagram.
func Decode(b []byte) (Message, error) {
	if len(b) == 0 {
		return Message{}, fmt.Errorf("ipc: decode: empty datagram")
	}
	r := bytes.NewReader(b)
	typeByte, _ := r.ReadByte()
	m := Message{Type: Type(typeByte)}

	var err error
	switch m.Type {
	case TypeSetFocus, TypeName:
		var hwnd uint64
		var tid int32
		if hwnd, err = readUint64(r); err != nil {
			return m, err
		}
		if tid, err = readInt32(r); err != nil {
			return m, err
		}
		if m.Class, err = readString(r); err != nil {
			return m, err
		}
		if m.Title, err = readString(r); err != nil {
			return m, err
		}
		if m.IsConsole, err = readBool(r); err != nil {
			return m, err
		}
		m.HWND, m.ThreadID = uintptr(hwnd), int(tid)

	case TypeLockState:
		for _, dst := range []*bool{&m.NumLock, &m.CapsLock, &m.ScrollLock, &m.KanaLock, &m.ImeLock, &m.ImeComp} {
			if *dst, err = readBool(r); err != nil {
				return m, err
			}
		}

	case TypeSync:
		// no payload

	case TypeThreadAttach, TypeThreadDetach:
		var tid int32
		if tid, err = readInt32(r); err != nil {
			return m, err
		}
		m.ThreadID = int(tid)

	case TypeCommand32, TypeCommand64:
		if m.Command, err = readUint64(r); err != nil {
			return m, err
		}

	case TypeShow:
		showByte, err := r.ReadByte()
		if err != nil {
			return m, fmt.Errorf("ipc: decode show state: %w", err)
		}
		m.Show = ShowState(showByte)
		if m.IsMDI, err = readBool(r); err != nil {
			return m, err
		}

	case TypeLog:
		if m.LogText, err = readString(r); err != nil {
			return m, err
		}

	default:
		return m, fmt.Errorf("ipc: decode: unknown message type %d", typeByte)
	}

	return m, nil
}

func writeUint64(buf *bytes.Buffer, v uint64) { binary.Write(buf, binary.LittleEndian, v) }
func writeInt32(buf *bytes.Buffer, v int32)   { binary.Write(buf, binary.LittleEndian, v) }
func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}
func writeString(buf *bytes.Buffer, s string) {
	if len(s) > maxStringLen {
		s = s[:maxStringLen]
	}
	writeUint64(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readInt32(r *bytes.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}
func readString(r *bytes.Reader) (string, error) {
	n, err := readUint64(r)
	if err != nil {
		return "", fmt.Errorf("ipc: decode string length: %w", err)
	}
	if n > maxStringLen {
		return "", fmt.Errorf("ipc: decode string: length %d exceeds max %d", n, maxStringLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("ipc: decode string body: %w", err)
	}
	return string(buf), nil
}
