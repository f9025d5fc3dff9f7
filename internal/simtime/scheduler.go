// Package simtime implements the single-threaded, cooperative virtual-time
// scheduler described in spec §4.1 and §5: a priority queue of timestamped
// continuations, advanced strictly by event processing rather than by any
// wall-clock or goroutine concurrency. There is exactly one logical writer
// at any instant, so no locking is needed anywhere in this package or in
// anything built on top of it.
package simtime

import "container/heap"

// Tracer receives a formatted line per dispatched event, mirroring the
// teacher's toggleable no-op-by-default trace hook. The zero Tracer
// (nil) is valid and simply drops everything.
type Tracer interface {
	Tracef(format string, args ...interface{})
}

// noopTracer is used when the caller supplies none.
type noopTracer struct{}

func (noopTracer) Tracef(string, ...interface{}) {}

// Process is a unit of cooperative work: a sequential function that runs
// to completion once dispatched, suspending only by calling back into the
// Scheduler (Timeout/Spawn) to schedule its own continuation. It receives
// the Scheduler so it can keep scheduling further steps of itself.
type Process func(s *Scheduler)

type scheduledEvent struct {
	when float64
	seq  uint64 // insertion order, breaks ties at equal `when` (spec §4.1)
	proc Process
}

type eventQueue []scheduledEvent

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when < q[j].when
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x interface{}) {
	*q = append(*q, x.(scheduledEvent))
}
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// Scheduler is the discrete-event engine. The zero value is not usable;
// construct with New.
type Scheduler struct {
	now    float64
	queue  eventQueue
	nextSeq uint64
	tracer Tracer
}

// New creates an empty scheduler. A nil tracer disables tracing.
func New(tracer Tracer) *Scheduler {
	if tracer == nil {
		tracer = noopTracer{}
	}
	s := &Scheduler{tracer: tracer}
	heap.Init(&s.queue)
	return s
}

// Now returns the current virtual time.
func (s *Scheduler) Now() float64 { return s.now }

// Spawn enrolls proc as a new process starting immediately at Now() — it
// runs synchronously until it either returns or schedules its own
// continuation via Timeout.
func (s *Scheduler) Spawn(proc Process) {
	proc(s)
}

// Timeout suspends the calling process for d time units: proc is invoked
// again, as a fresh dispatch, once virtual time reaches Now()+d. d must be
// non-negative.
func (s *Scheduler) Timeout(d float64, proc Process) {
	s.nextSeq++
	heap.Push(&s.queue, scheduledEvent{
		when: s.now + d,
		seq:  s.nextSeq,
		proc: proc,
	})
}

// Pending reports how many events remain in the queue.
func (s *Scheduler) Pending() int { return len(s.queue) }

// RunUntil drains the ready queue, advancing Now(), until Now() >= T or
// the queue empties, whichever comes first (spec §4.1).
func (s *Scheduler) RunUntil(t float64) {
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.when >= t {
			break
		}
		heap.Pop(&s.queue)
		s.now = next.when
		s.tracer.Tracef("%.4f dispatch", s.now)
		next.proc(s)
	}
	if s.now < t {
		s.now = t
	}
}
