package mode

import (
	"container/heap"
	"fmt"
	"time"
)

// delayItem is a single pending delay: one-shot, named, and replaced
// whenever the same name is rescheduled. Ordered by fire-at with ties
// broken by scheduling order.
type delayItem struct {
	name     string
	fireAt   time.Time
	callback func()
	seq      int64
	index    int
}

type delayHeap []*delayItem

func (h delayHeap) Len() int { return len(h) }
func (h delayHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].fireAt.Before(h[j].fireAt)
}
func (h delayHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *delayHeap) Push(x any) {
	it := x.(*delayItem)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *delayHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	it.index = -1
	*h = old[:n-1]
	return it
}

// delayScheduler is the per-mode named delay table backing Delay/
// CancelDelay/IsDelayed and the tick-driven dispatch in TickDelays.
type delayScheduler struct {
	byName map[string]*delayItem
	h      delayHeap
	seq    int64
}

func newDelayScheduler() *delayScheduler {
	return &delayScheduler{byName: make(map[string]*delayItem)}
}

// schedule installs or atomically replaces the delay named name, firing
// after d from now. An empty name yields a fresh unique one.
func (s *delayScheduler) schedule(now time.Time, d time.Duration, cb func(), name string) string {
	if name == "" {
		s.seq++
		name = fmt.Sprintf("_delay_%d", s.seq)
	}
	if existing, ok := s.byName[name]; ok {
		heap.Remove(&s.h, existing.index)
		delete(s.byName, name)
	}
	s.seq++
	it := &delayItem{
		name:     name,
		fireAt:   now.Add(d),
		callback: cb,
		seq:      s.seq,
	}
	s.byName[name] = it
	heap.Push(&s.h, it)
	return name
}

// cancel removes the delay named name. No-op if none exists.
func (s *delayScheduler) cancel(name string) {
	it, ok := s.byName[name]
	if !ok {
		return
	}
	heap.Remove(&s.h, it.index)
	delete(s.byName, name)
}

func (s *delayScheduler) isDelayed(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// tick removes and invokes every delay whose fire-at has passed, in
// ascending fire-at order (ties by schedule order). The due set is
// drained from the heap before any callback runs: removal-before-invoke
// lets a callback re-schedule the same name, and a re-scheduled delay
// waits for the next tick instead of firing in this one.
func (s *delayScheduler) tick(now time.Time) {
	var due []*delayItem
	for s.h.Len() > 0 && !s.h[0].fireAt.After(now) {
		it := heap.Pop(&s.h).(*delayItem)
		delete(s.byName, it.name)
		due = append(due, it)
	}
	for _, it := range due {
		it.callback()
	}
}
