package park

import (
	"testing"
	"time"
)

func TestServiceQueue_FIFOAndCapacity(t *testing.T) {
	// GIVEN a line with room for two orders
	clock := newTestClock(t, 100)
	q := NewServiceQueue(clock, 2)
	a, b := &stubGuest{id: 1}, &stubGuest{id: 2}

	if !q.Enqueue(a, 0) || !q.Enqueue(b, 1) {
		t.Fatal("enqueue under capacity rejected")
	}
	// THEN a third order is rejected
	if q.Enqueue(&stubGuest{id: 3}, 2) {
		t.Error("enqueue at capacity accepted, want rejected")
	}

	// AND orders come out in FIFO order with their enqueue minute intact
	first := q.Dequeue()
	if first == nil || first.Diner != a || first.EnqueuedAt != 0 {
		t.Error("first dequeue is not the first order")
	}
	second := q.Dequeue()
	if second == nil || second.Diner != b {
		t.Error("second dequeue is not the second order")
	}
	if q.Dequeue() != nil {
		t.Error("dequeue on empty line returned an order")
	}
}

func TestServiceQueue_RemoveByIdentity(t *testing.T) {
	clock := newTestClock(t, 100)
	q := NewServiceQueue(clock, 0)
	d := &stubGuest{id: 1}
	q.Enqueue(d, 0)

	if !q.RemoveByIdentity(d) {
		t.Error("RemoveByIdentity = false, want true")
	}
	if q.RemoveByIdentity(d) {
		t.Error("second RemoveByIdentity = true, want false")
	}
	if q.Size() != 0 {
		t.Errorf("Size() = %d, want 0", q.Size())
	}
}

func TestServiceQueue_WaitAndDequeue_TimesOut(t *testing.T) {
	clock := newTestClock(t, 100)
	q := NewServiceQueue(clock, 0)

	if got := q.WaitAndDequeue(2); got != nil {
		t.Errorf("WaitAndDequeue on empty line = %v, want nil", got)
	}
}

func TestServiceQueue_WaitAndDequeue_WokenByEnqueue(t *testing.T) {
	clock := newTestClock(t, 1000)
	q := NewServiceQueue(clock, 0)
	d := &stubGuest{id: 7}

	result := make(chan *OrderItem, 1)
	go func() {
		result <- q.WaitAndDequeue(500)
	}()

	time.Sleep(2 * time.Millisecond)
	q.Enqueue(d, 3)

	select {
	case got := <-result:
		if got == nil || got.Diner != d {
			t.Error("waiter did not receive the enqueued order")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken by enqueue")
	}
}

func TestServiceQueue_WaitAndDequeue_ObservesStop(t *testing.T) {
	clock := NewClock(0.001, 1_000_000)
	q := NewServiceQueue(clock, 0)

	result := make(chan *OrderItem, 1)
	go func() {
		result <- q.WaitAndDequeue(-1) // indefinite wait
	}()

	time.Sleep(2 * time.Millisecond)
	clock.Stop()

	select {
	case got := <-result:
		if got != nil {
			t.Errorf("WaitAndDequeue after stop = %v, want nil", got)
		}
	case <-time.After(time.Second):
		t.Fatal("indefinite wait did not observe stop")
	}
}
