package midi

import "sync/atomic"

// The bridge is an unbounded linked queue with one producer (the listener
// callback) and one consumer (the foreground). Push never blocks and never
// waits on the consumer; TryTake never blocks.

type node struct {
	next atomic.Pointer[node]
	ev   LiveEvent
}

// Sender is the producer end of the event bridge.
type Sender struct {
	last atomic.Pointer[node]
}

// Receiver is the consumer end of the event bridge.
type Receiver struct {
	head *node
}

// NewBridge returns the two ends of an empty event bridge.
func NewBridge() (*Sender, *Receiver) {
	stub := &node{}
	s := &Sender{}
	s.last.Store(stub)
	return s, &Receiver{head: stub}
}

// Push appends ev. Only one goroutine may push at a time.
func (s *Sender) Push(ev LiveEvent) {
	n := &node{ev: ev}
	prev := s.last.Swap(n)
	prev.next.Store(n)
}

// TryTake removes and returns the oldest event, or reports false if there
// is none. Only one goroutine may take.
func (r *Receiver) TryTake() (LiveEvent, bool) {
	next := r.head.next.Load()
	if next == nil {
		return LiveEvent{}, false
	}
	r.head = next
	ev := next.ev
	next.ev = LiveEvent{}
	return ev, true
}
