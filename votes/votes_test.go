package votes

import (
	"net"
	"testing"
	"time"
)

func TestDropOldestQueueDropsOnOverflow(t *testing.T) {
	q := NewDropOldestQueue(2)
	q.Push(Blob("a"))
	q.Push(Blob("b"))
	q.Push(Blob("c")) // drops "a"

	b1, ok := q.Pop()
	if !ok || string(b1) != "b" {
		t.Fatalf("got %q ok=%v, want b", b1, ok)
	}
	b2, ok := q.Pop()
	if !ok || string(b2) != "c" {
		t.Fatalf("got %q ok=%v, want c", b2, ok)
	}
}

func TestDropOldestQueueDefaultCapacity(t *testing.T) {
	q := NewDropOldestQueue(0)
	if q.cap != defaultCapacity {
		t.Errorf("cap = %d, want %d", q.cap, defaultCapacity)
	}
}

func TestQueueCloseUnblocksPop(t *testing.T) {
	q := NewDropOldestQueue(4)
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()
	select {
	case ok := <-done:
		if ok {
			t.Error("want ok=false after close with nothing queued")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Close")
	}
}

func TestResponderDeliversEnqueuedBlobs(t *testing.T) {
	sink, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	r, err := NewResponder(sink.LocalAddr().(*net.UDPAddr), 4)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	go r.Run()

	r.Enqueue(Blob("vote-1"))

	sink.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := sink.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "vote-1" {
		t.Errorf("got %q, want vote-1", buf[:n])
	}
}
