// Package timer implements the scheduled one-shot timer service spec.md
// §9 describes: "{deadline, cancelled, callback, data}; a min-heap is
// sufficient." This is the only form of scheduled work in the dispatcher
// (spec.md §5) — there is no cancellation token for the frame pipeline
// itself, only for individual timers.
package timer

import "container/heap"

// Callback is invoked with the microsecond time the timer actually
// fired at.
type Callback func(nowUS int64)

// Timer is one scheduled one-shot callback.
type Timer struct {
	name     string
	deadline int64
	cb       Callback
	index    int // heap.Interface bookkeeping
	cancelled bool
}

// Name returns the timer's diagnostic name, set at Init.
func (t *Timer) Name() string { return t.name }

// Queue is a min-heap of pending timers ordered by deadline, plus the
// set/cancel operations spec.md §9 names.
type Queue struct {
	h timerHeap
}

// Init creates (but does not schedule) a named timer bound to cb. The
// real libinput-derived design reuses one Timer struct per logical
// timeout (e.g. one per DWT state machine); Init mirrors that by
// returning a handle the caller keeps across Set/Cancel calls.
func (q *Queue) Init(name string, cb Callback) *Timer {
	return &Timer{name: name, cb: cb, index: -1}
}

// Set schedules t to fire at deadlineUS, replacing any pending
// deadline for the same Timer.
func (q *Queue) Set(t *Timer, deadlineUS int64) {
	t.cancelled = false
	t.deadline = deadlineUS
	if t.index >= 0 {
		heap.Fix(&q.h, t.index)
		return
	}
	heap.Push(&q.h, t)
}

// Cancel is idempotent: cancelling an already-cancelled or never-set
// timer is a no-op.
func (q *Queue) Cancel(t *Timer) {
	t.cancelled = true
	if t.index >= 0 {
		heap.Remove(&q.h, t.index)
	}
}

// Destroy removes t from the queue permanently; the handle must not be
// reused afterward.
func (q *Queue) Destroy(t *Timer) {
	q.Cancel(t)
}

// NextDeadline returns the earliest pending deadline and true, or
// (0, false) if the queue is empty. The event loop (internal/evsource)
// uses this to compute an epoll_wait timeout.
func (q *Queue) NextDeadline() (int64, bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].deadline, true
}

// Expire fires every timer whose deadline is <= nowUS, in deadline
// order, removing each from the queue before invoking its callback (a
// callback firing a fresh Set on its own Timer must not be mistaken for
// the same pending entry).
func (q *Queue) Expire(nowUS int64) {
	for len(q.h) > 0 && q.h[0].deadline <= nowUS {
		t := heap.Pop(&q.h).(*Timer)
		if t.cancelled {
			continue
		}
		t.cb(nowUS)
	}
}

// timerHeap implements container/heap.Interface over *Timer.
type timerHeap []*Timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline < h[j].deadline }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
