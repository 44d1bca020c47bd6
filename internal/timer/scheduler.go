package timer

import (
	"container/heap"
	"time"
)

// ID identifies a scheduled callback. IDs are never reused.
type ID uint64

// None is the zero ID; Schedule never returns it.
const None ID = 0

type task struct {
	id    ID
	due   time.Time
	fn    func()
	index int
}

// taskQueue orders tasks by due time, then by scheduling order.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].id < q[j].id
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler runs deferred callbacks against a Clock. It never blocks and
// never starts goroutines: the owner calls RunDue once per tick and due
// callbacks run inline. Not safe for concurrent use.
type Scheduler struct {
	clock   Clock
	queue   taskQueue
	pending map[ID]*task
	nextID  ID
}

// NewScheduler creates a scheduler reading time from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock:   clock,
		pending: make(map[ID]*task),
	}
}

// Clock returns the clock the scheduler runs on.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// After schedules fn to run once d has elapsed on the scheduler's clock.
func (s *Scheduler) After(d time.Duration, fn func()) ID {
	s.nextID++
	t := &task{id: s.nextID, due: s.clock.Now().Add(d), fn: fn}
	heap.Push(&s.queue, t)
	s.pending[t.id] = t
	return t.id
}

// Cancel removes a pending callback. It reports whether the callback was
// still pending; cancelling a fired or unknown ID is a no-op.
func (s *Scheduler) Cancel(id ID) bool {
	t, ok := s.pending[id]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, t.index)
	delete(s.pending, id)
	return true
}

// Pending reports whether id is still waiting to run.
func (s *Scheduler) Pending(id ID) bool {
	_, ok := s.pending[id]
	return ok
}

// Len returns the number of pending callbacks.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// RunDue runs every callback whose due time has passed, earliest first, and
// returns how many ran. Callbacks may schedule or cancel other callbacks;
// anything they schedule that is already due runs in the same call.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()
	ran := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&s.queue)
		delete(s.pending, next.id)
		next.fn()
		ran++
	}
	return ran
}

// Clear drops every pending callback without running it.
func (s *Scheduler) Clear() {
	s.queue = nil
	clear(s.pending)
}
