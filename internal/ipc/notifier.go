//go:build linux

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// EngineSink is the subset of *engine.Engine a Listener dispatches
// decoded messages into, kept as an interface so tests can substitute a
// fake without constructing a real Engine.
type EngineSink interface {
	SetFocus(hwnd uintptr, threadID int, class, title string, isConsole bool)
	NameFocus(threadID int, class, title string)
	SetLockState(numLock, capsLock, scrollLock, kanaLock, imeLock, imeComp bool)
	SetShowState(maximized, minimized, isMDI bool)
	ThreadAttachNotify(threadID int)
	ThreadDetachNotify(threadID int)
	SyncNotify()
}

// Logger is the minimal logging capability a Listener needs; satisfied
// by *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// SocketPath returns the session-scoped datagram socket path under
// $XDG_RUNTIME_DIR, isolating concurrent user sessions per spec §6 ("the
// channel name encodes the OS session id").
func SocketPath(sessionID int) string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("yamy-%d", os.Getuid()))
	}
	return filepath.Join(dir, fmt.Sprintf("yamy-ipc-%d.sock", sessionID))
}

// Listener owns one Unix datagram socket and dispatches every verified
// message it receives into an EngineSink.
type Listener struct {
	conn *net.UnixConn
	path string
	uid  int

	Logger Logger
}

// NewListener binds a datagram socket at SocketPath(sessionID),
// replacing any stale socket file left by a previous run of the same
// session, and enables SO_PASSCRED so ancillary sender credentials
// arrive with every datagram.
func NewListener(sessionID int) (*Listener, error) {
	path := SocketPath(sessionID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ipc: create socket dir: %w", err)
	}
	_ = os.Remove(path)

	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ipc: syscall conn: %w", err)
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_PASSCRED, 1)
	})
	if err == nil {
		err = sockErr
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ipc: enable SO_PASSCRED: %w", err)
	}

	return &Listener{conn: conn, path: path, uid: os.Getuid()}, nil
}

// Path returns the bound socket's filesystem path.
func (l *Listener) Path() string { return l.path }

// Close removes the socket file and closes the underlying connection.
func (l *Listener) Close() error {
	err := l.conn.Close()
	_ = os.Remove(l.path)
	return err
}

// Serve reads datagrams until the connection is closed, verifying each
// sender's credentials via the SCM_CREDENTIALS ancillary data (the
// SO_PEERCRED equivalent for datagram sockets) before dispatching into
// sink. A message from a uid other than our own is dropped and logged,
// matching spec §7's "IPC malformed message: logged, dropped, channel
// remains open" failure model.
func (l *Listener) Serve(sink EngineSink) error {
	buf := make([]byte, 8192)
	oob := make([]byte, unix.CmsgSpace(unix.SizeofUcred))

	for {
		n, oobn, _, _, err := l.conn.ReadMsgUnix(buf, oob)
		if err != nil {
			if isClosedConnError(err) {
				return nil
			}
			return fmt.Errorf("ipc: read datagram: %w", err)
		}

		cred, err := peerCredential(oob[:oobn])
		if err != nil {
			l.logf("ipc: dropped datagram: %v", err)
			continue
		}
		if int(cred.Uid) != l.uid {
			l.logf("ipc: dropped datagram from uid %d (expected %d)", cred.Uid, l.uid)
			continue
		}

		msg, err := Decode(buf[:n])
		if err != nil {
			l.logf("ipc: malformed message: %v", err)
			continue
		}
		dispatch(sink, msg, l)
	}
}

func peerCredential(oob []byte) (*unix.Ucred, error) {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("parse control message: %w", err)
	}
	if len(scms) == 0 {
		return nil, fmt.Errorf("no ancillary credentials in datagram")
	}
	return unix.ParseUnixCredentials(&scms[0])
}

func (l *Listener) logf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}

// dispatch applies one decoded Message to sink under whatever locking
// sink's own methods provide (Engine takes its lock per-call, so no
// additional synchronization belongs here).
func dispatch(sink EngineSink, msg Message, l *Listener) {
	switch msg.Type {
	case TypeSetFocus:
		sink.SetFocus(msg.HWND, msg.ThreadID, msg.Class, msg.Title, msg.IsConsole)
	case TypeName:
		sink.NameFocus(msg.ThreadID, msg.Class, msg.Title)
	case TypeLockState:
		sink.SetLockState(msg.NumLock, msg.CapsLock, msg.ScrollLock, msg.KanaLock, msg.ImeLock, msg.ImeComp)
	case TypeSync:
		sink.SyncNotify()
	case TypeThreadAttach:
		sink.ThreadAttachNotify(msg.ThreadID)
	case TypeThreadDetach:
		sink.ThreadDetachNotify(msg.ThreadID)
	case TypeShow:
		sink.SetShowState(msg.Show == ShowMaximized, msg.Show == ShowMinimized, msg.IsMDI)
	case TypeCommand32, TypeCommand64:
		l.logf("ipc: received %s command=%d (no extension wired)", msg.Type, msg.Command)
	case TypeLog:
		l.logf("ipc: remote log: %s", msg.LogText)
	}
}

func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
