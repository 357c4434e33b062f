// Package timer runs one-shot and interval tasks on the caller's goroutine.
//
// A Scheduler never spawns goroutines. Tasks become due as the owner moves
// the scheduler's clock forward with Advance, which is called once per frame
// by the render loop. Every scheduled task returns a Handle whose Cancel
// guarantees the callback will not run afterwards.
package timer

import (
	"container/heap"
	"time"
)

// Handle identifies a scheduled task.
type Handle struct {
	t *task
}

// Cancel stops the task. Cancelling a zero, fired or already cancelled
// handle is a no-op.
func (h Handle) Cancel() {
	if h.t != nil {
		h.t.cancelled = true
	}
}

// Active reports whether the task can still fire.
func (h Handle) Active() bool {
	return h.t != nil && !h.t.cancelled && !h.t.done
}

type task struct {
	due       time.Time
	every     time.Duration // zero for one-shot
	coalesce  bool
	fn        func(now time.Time)
	seq       uint64
	cancelled bool
	done      bool
	index     int
}

// Scheduler holds pending tasks ordered by due time.
type Scheduler struct {
	now   time.Time
	queue taskQueue
	seq   uint64
}

// New creates a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// After runs fn once, d after the current time.
func (s *Scheduler) After(d time.Duration, fn func(now time.Time)) Handle {
	return s.push(d, 0, fn)
}

// Every runs fn every d, starting d after the current time.
func (s *Scheduler) Every(d time.Duration, fn func(now time.Time)) Handle {
	if d <= 0 {
		d = time.Millisecond
	}
	return s.push(d, d, fn)
}

// EveryLatest is like Every, but after a stall it fires once, for the most
// recent missed period, and drops the older ones.
func (s *Scheduler) EveryLatest(d time.Duration, fn func(now time.Time)) Handle {
	h := s.Every(d, fn)
	h.t.coalesce = true
	return h
}

func (s *Scheduler) push(d, every time.Duration, fn func(time.Time)) Handle {
	s.seq++
	t := &task{due: s.now.Add(d), every: every, fn: fn, seq: s.seq}
	heap.Push(&s.queue, t)
	return Handle{t: t}
}

// Advance moves the clock to now and runs every task that became due, in due
// order. Interval tasks that fell behind fire once per missed period, each
// seeing its own due time, unless they were scheduled with EveryLatest.
// Tasks scheduled by callbacks run in the same call if they are already due. A clock moving backwards is ignored.
func (s *Scheduler) Advance(now time.Time) {
	for s.queue.Len() > 0 {
		t := s.queue[0]
		if t.cancelled {
			heap.Pop(&s.queue)
			continue
		}
		if t.due.After(now) {
			break
		}
		heap.Pop(&s.queue)
		if t.coalesce {
			if missed := now.Sub(t.due) / t.every; missed > 0 {
				t.due = t.due.Add(missed * t.every)
			}
		}
		if t.due.After(s.now) {
			s.now = t.due
		}
		if t.every > 0 {
			t.due = t.due.Add(t.every)
			s.seq++
			t.seq = s.seq
			heap.Push(&s.queue, t)
		} else {
			t.done = true
		}
		t.fn(s.now)
	}
	if now.After(s.now) {
		s.now = now
	}
}

// Pending returns the number of live tasks.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.queue {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// CancelAll cancels every pending task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.queue {
		t.cancelled = true
	}
	s.queue = s.queue[:0]
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
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
