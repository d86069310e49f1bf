package queue_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/careward/alert-relay/internal/domain"
	"github.com/careward/alert-relay/internal/queue"
)

func item(id string, p domain.Priority, createdAt time.Time) *domain.NotificationItem {
	return &domain.NotificationItem{
		Identifier: id,
		Title:      "t",
		Body:       "b",
		Priority:   p,
		CreatedAt:  createdAt,
	}
}

func TestLane_BasicEnqueueDequeue(t *testing.T) {
	l := queue.New(10)

	if err := l.Enqueue(item("1", domain.PriorityNormal, time.Now())); err != nil {
		t.Fatal(err)
	}
	if l.IsEmpty() {
		t.Fatal("expected non-empty lane")
	}

	got, ok := l.DequeueHighest()
	if !ok {
		t.Fatal("expected item, got nothing")
	}
	if got.Identifier != "1" {
		t.Fatalf("expected id=1, got %s", got.Identifier)
	}
	if !l.IsEmpty() {
		t.Fatal("expected empty lane after dequeue")
	}
}

func TestLane_DequeueEmpty(t *testing.T) {
	l := queue.New(10)
	if _, ok := l.DequeueHighest(); ok {
		t.Fatal("expected ok=false on an empty lane")
	}
}

// TestLane_PriorityOrdering verifies dequeue order is non-decreasing
// priority, and FIFO by CreatedAt within a tier.
func TestLane_PriorityOrdering(t *testing.T) {
	l := queue.New(10)
	base := time.Now()

	_ = l.Enqueue(item("normal-old", domain.PriorityNormal, base))
	_ = l.Enqueue(item("important", domain.PriorityImportant, base.Add(time.Second)))
	_ = l.Enqueue(item("critical", domain.PriorityCritical, base.Add(2*time.Second)))
	_ = l.Enqueue(item("normal-new", domain.PriorityNormal, base.Add(3*time.Second)))

	want := []string{"critical", "important", "normal-old", "normal-new"}
	for _, expected := range want {
		got, ok := l.DequeueHighest()
		if !ok {
			t.Fatalf("lane exhausted before %q", expected)
		}
		if got.Identifier != expected {
			t.Fatalf("expected %q, got %q", expected, got.Identifier)
		}
	}
}

// TestLane_LaterCriticalBeforeEarlierNormal: item A (normal, t=0) then
// item B (critical, t=1) must dequeue as B, then A.
func TestLane_LaterCriticalBeforeEarlierNormal(t *testing.T) {
	l := queue.New(10)
	base := time.Now()

	_ = l.Enqueue(item("A", domain.PriorityNormal, base))
	_ = l.Enqueue(item("B", domain.PriorityCritical, base.Add(time.Second)))

	first, _ := l.DequeueHighest()
	second, _ := l.DequeueHighest()
	if first.Identifier != "B" || second.Identifier != "A" {
		t.Fatalf("expected B then A, got %q then %q", first.Identifier, second.Identifier)
	}
}

// TestLane_FIFOWithinEqualTimestamps verifies the insertion-sequence
// tiebreak: equal priority and timestamp must still dequeue FIFO, not LIFO.
func TestLane_FIFOWithinEqualTimestamps(t *testing.T) {
	l := queue.New(20)
	ts := time.Now()

	for i := 0; i < 10; i++ {
		_ = l.Enqueue(item(fmt.Sprintf("n%d", i), domain.PriorityNormal, ts))
	}
	for i := 0; i < 10; i++ {
		got, _ := l.DequeueHighest()
		if want := fmt.Sprintf("n%d", i); got.Identifier != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, got.Identifier)
		}
	}
}

// TestLane_CapacityBound verifies the 101st enqueue against a 100-item lane
// fails with ErrQueueFull and leaves exactly 100 items queued.
func TestLane_CapacityBound(t *testing.T) {
	l := queue.New(domain.DefaultQueueCapacity)
	now := time.Now()

	for i := 0; i < domain.DefaultQueueCapacity; i++ {
		if err := l.Enqueue(item(fmt.Sprintf("i%d", i), domain.PriorityNormal, now)); err != nil {
			t.Fatalf("enqueue %d: unexpected error: %v", i, err)
		}
	}

	err := l.Enqueue(item("overflow", domain.PriorityNormal, now))
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if l.Size() != domain.DefaultQueueCapacity {
		t.Fatalf("expected size=%d after rejection, got %d", domain.DefaultQueueCapacity, l.Size())
	}
}

func TestLane_Remove(t *testing.T) {
	l := queue.New(10)
	now := time.Now()

	_ = l.Enqueue(item("keep", domain.PriorityNormal, now))
	_ = l.Enqueue(item("drop", domain.PriorityNormal, now.Add(time.Second)))

	removed, ok := l.Remove("drop")
	if !ok || removed.Identifier != "drop" {
		t.Fatalf("expected to remove drop, got ok=%v item=%v", ok, removed)
	}
	if _, ok := l.Remove("drop"); ok {
		t.Fatal("expected second removal to be a no-op")
	}
	if l.Size() != 1 {
		t.Fatalf("expected size=1, got %d", l.Size())
	}
	got, _ := l.DequeueHighest()
	if got.Identifier != "keep" {
		t.Fatalf("expected keep to survive, got %q", got.Identifier)
	}
}

// TestLane_ReadySignal verifies an enqueue wakes a consumer blocked on the
// ready channel.
func TestLane_ReadySignal(t *testing.T) {
	l := queue.New(10)

	done := make(chan *domain.NotificationItem, 1)
	go func() {
		<-l.Ready()
		got, _ := l.DequeueHighest()
		done <- got
	}()

	_ = l.Enqueue(item("wake", domain.PriorityNormal, time.Now()))

	select {
	case got := <-done:
		if got == nil || got.Identifier != "wake" {
			t.Fatalf("expected wake, got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer was not woken by enqueue")
	}
}

// TestLane_ConcurrentEnqueue verifies multiple producers can enqueue against
// a single dequeuer without races or lost items.
func TestLane_ConcurrentEnqueue(t *testing.T) {
	const producers = 5
	const perProducer = 100
	const total = producers * perProducer

	l := queue.New(total)

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				id := fmt.Sprintf("p%d-%d", p, j)
				if err := l.Enqueue(item(id, domain.PriorityNormal, time.Now())); err != nil {
					t.Errorf("enqueue %s: %v", id, err)
				}
			}
		}(i)
	}
	wg.Wait()

	if l.Size() != total {
		t.Fatalf("expected %d items, got %d", total, l.Size())
	}
	for i := 0; i < total; i++ {
		if _, ok := l.DequeueHighest(); !ok {
			t.Fatalf("lane exhausted at %d/%d", i, total)
		}
	}
}
