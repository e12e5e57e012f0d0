package engine

import (
	"testing"
	"time"
)

func TestQueuePushPopFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(KeyEvent{Pressed: true})
	q.Push(KeyEvent{Pressed: false})

	done := make(chan struct{})
	ev1, ok := q.Pop(done)
	if !ok || !ev1.Pressed {
		t.Fatalf("expected first event pressed=true, got %+v ok=%v", ev1, ok)
	}
	ev2, ok := q.Pop(done)
	if !ok || ev2.Pressed {
		t.Fatalf("expected second event pressed=false, got %+v ok=%v", ev2, ok)
	}
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue()
	done := make(chan struct{})
	result := make(chan bool, 1)

	go func() {
		_, ok := q.Pop(done)
		result <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-result:
		t.Fatalf("Pop returned before any Push")
	default:
	}

	q.Push(KeyEvent{})
	select {
	case ok := <-result:
		if !ok {
			t.Fatalf("expected ok=true after push")
		}
	case <-time.After(time.Second):
		t.Fatalf("Pop did not unblock after Push")
	}
}

func TestQueueCloseUnblocksPop(t *testing.T) {
	q := NewQueue()
	done := make(chan struct{})
	result := make(chan bool, 1)

	go func() {
		_, ok := q.Pop(done)
		result <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-result:
		if ok {
			t.Fatalf("expected ok=false after Close")
		}
	case <-time.After(time.Second):
		t.Fatalf("Pop did not unblock after Close")
	}
}

func TestQueuePushAfterCloseIsNoop(t *testing.T) {
	q := NewQueue()
	q.Close()
	q.Push(KeyEvent{Pressed: true})

	done := make(chan struct{})
	close(done)
	_, ok := q.Pop(done)
	if ok {
		t.Fatalf("expected Pop on a closed queue to report ok=false")
	}
}
