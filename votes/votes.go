// Package votes implements the write stage's vote blob responder: a
// dedicated UDP socket, bound ephemerally, fed by a bounded queue that the
// writer enqueues into without blocking.
//
// The reference implementation uses an unbounded channel here (flagged as
// a design smell — see spec's design notes); this package instead bounds
// the queue and drops the oldest blob on overflow, so a slow or stalled
// responder can never back up into the writer.
package votes

import (
	"net"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// Blob is an opaque vote datagram payload.
type Blob []byte

// defaultCapacity is the queue size used when callers don't specify one.
const defaultCapacity = 64

// DropOldestQueue is a bounded FIFO: pushing onto a full queue discards the
// oldest entry instead of blocking the pusher.
type DropOldestQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []Blob
	cap    int
	closed bool
}

// NewDropOldestQueue creates a queue of the given capacity (defaultCapacity
// if capacity <= 0).
func NewDropOldestQueue(capacity int) *DropOldestQueue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	q := &DropOldestQueue{cap: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues b. If the queue is already at capacity, the oldest queued
// blob is dropped to make room.
func (q *DropOldestQueue) Push(b Blob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if len(q.buf) >= q.cap {
		dropped := q.buf[0]
		q.buf = q.buf[1:]
		log.Warn("votes: queue full, dropping oldest vote blob", "size", len(dropped))
	}
	q.buf = append(q.buf, b)
	q.cond.Signal()
}

// Pop blocks until a blob is available or the queue is closed. ok is false
// only once the queue has been closed and fully drained.
func (q *DropOldestQueue) Pop() (b Blob, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.buf) == 0 {
		return nil, false
	}
	b, q.buf = q.buf[0], q.buf[1:]
	return b, true
}

// Len reports the number of blobs currently queued.
func (q *DropOldestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Close unblocks any pending Pop and causes future Push calls to be
// silently discarded.
func (q *DropOldestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Responder owns a dedicated, ephemerally-bound UDP socket and drains a
// DropOldestQueue of vote blobs onto it. Matches the "one auxiliary I/O
// worker for vote blob responder" thread topology.
type Responder struct {
	conn  *net.UDPConn
	dest  *net.UDPAddr
	queue *DropOldestQueue
}

// NewResponder binds the responder's socket to 0.0.0.0:0 (ephemeral), per
// spec's vote-socket config.
func NewResponder(dest *net.UDPAddr, capacity int) (*Responder, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, err
	}
	return &Responder{conn: conn, dest: dest, queue: NewDropOldestQueue(capacity)}, nil
}

// Enqueue hands a blob to the responder without blocking the caller.
func (r *Responder) Enqueue(b Blob) { r.queue.Push(b) }

// Run drains the queue onto the socket until Close is called. Meant to run
// on its own goroutine.
func (r *Responder) Run() {
	for {
		b, ok := r.queue.Pop()
		if !ok {
			return
		}
		if _, err := r.conn.WriteToUDP(b, r.dest); err != nil {
			log.Warn("votes: send failed", "err", err)
		}
	}
}

// LocalAddr returns the responder's bound ephemeral address.
func (r *Responder) LocalAddr() net.Addr { return r.conn.LocalAddr() }

// Close shuts down the queue and the underlying socket.
func (r *Responder) Close() error {
	r.queue.Close()
	return r.conn.Close()
}
