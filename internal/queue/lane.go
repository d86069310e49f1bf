package queue

import (
	"container/heap"
	"sync"

	"github.com/careward/alert-relay/internal/domain"
)

// Lane is a bounded, concurrency-safe priority queue of notification items.
//
// Ordering: priority first (critical > important > normal), then CreatedAt
// ascending, then insertion sequence ascending. The sequence tiebreak keeps
// dequeue order stable (FIFO, never LIFO) when two items share a timestamp.
//
// Two instances exist per process: the normal priority queue (capacity 100)
// and the critical alert lane (capacity 1000). Critical items never share a
// lane with routine ones, so sustained routine load cannot crowd them out.
//
// Enqueue may be called from any goroutine; the orchestrator is the only
// dequeuer. A single mutex guards that boundary.
type Lane struct {
	mu       sync.Mutex
	items    itemHeap
	capacity int
	nextSeq  uint64

	// ready carries a wakeup signal for the orchestrator. Buffered with
	// capacity 1: a signal is never lost while the orchestrator is busy,
	// and duplicate signals collapse into one.
	ready chan struct{}
}

// New creates a lane holding at most capacity items.
func New(capacity int) *Lane {
	return &Lane{
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

// Enqueue adds an item to the lane. It is non-blocking: a lane at capacity
// returns domain.ErrQueueFull immediately rather than waiting for space.
func (l *Lane) Enqueue(item *domain.NotificationItem) error {
	l.mu.Lock()
	if l.items.Len() >= l.capacity {
		l.mu.Unlock()
		return domain.ErrQueueFull
	}
	l.nextSeq++
	heap.Push(&l.items, &entry{item: item, seq: l.nextSeq})
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
	return nil
}

// DequeueHighest removes and returns the highest-ordered item.
// Returns (nil, false) when the lane is empty.
func (l *Lane) DequeueHighest() (*domain.NotificationItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.items.Len() == 0 {
		return nil, false
	}
	e := heap.Pop(&l.items).(*entry)
	return e.item, true
}

// Remove deletes a queued item by identifier without dequeuing it.
// Returns (nil, false) when no item with that identifier is queued.
func (l *Lane) Remove(identifier string) (*domain.NotificationItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.items {
		if e.item.Identifier == identifier {
			heap.Remove(&l.items, i)
			return e.item, true
		}
	}
	return nil, false
}

func (l *Lane) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items.Len() == 0
}

func (l *Lane) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items.Len()
}

// Ready returns the wakeup channel. The orchestrator blocks on it when both
// lanes are empty and re-checks the lanes after every signal; a spurious
// wakeup is harmless.
func (l *Lane) Ready() <-chan struct{} { return l.ready }

// entry wraps an item with its insertion sequence for the stable tiebreak.
type entry struct {
	item *domain.NotificationItem
	seq  uint64
}

type itemHeap []*entry

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	a, b := h[i].item, h[j].item
	if a.Priority != b.Priority {
		return a.Priority.Before(b.Priority)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(*entry)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
