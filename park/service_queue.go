// Implements the ServiceQueue, the single-lane FIFO sibling of RideQueue
// used by food facilities. Staff goroutines dequeue; visitors enqueue and
// may abandon.

package park

import (
	"sync"
	"time"
)

// Diner is the narrow contract a service queue participant must satisfy.
type Diner interface {
	// ID identifies the diner in the metrics log.
	ID() int64

	// NotifyOrderServed delivers the order-complete signal. Best-effort:
	// a non-nil error is logged by the facility and never propagated.
	NotifyOrderServed(facilityName string, minute int64) error
}

// OrderItem wraps a diner with the simulated minute it joined the line.
type OrderItem struct {
	Diner      Diner
	EnqueuedAt int64
}

// ServiceQueue is a thread-safe single-lane FIFO queue with an optional
// capacity bound. Same admission and blocking-dequeue contract as RideQueue,
// with no priority concept.
type ServiceQueue struct {
	clock *Clock

	mu      sync.Mutex // guards items
	items   []*OrderItem
	wake    chan struct{}
	maxSize int // 0 = unbounded
}

// NewServiceQueue creates a queue for one service facility. maxSize of zero
// means unbounded; a negative value is a programmer error.
func NewServiceQueue(clock *Clock, maxSize int) *ServiceQueue {
	if clock == nil {
		panic("NewServiceQueue: clock must not be nil")
	}
	if maxSize < 0 {
		panic("NewServiceQueue: capacity must not be negative")
	}
	return &ServiceQueue{
		clock:   clock,
		wake:    make(chan struct{}, 1),
		maxSize: maxSize,
	}
}

// Size returns the number of waiting orders.
func (q *ServiceQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Enqueue adds a diner to the tail of the line at nowMinute.
// Returns false when the queue is at capacity.
func (q *ServiceQueue) Enqueue(diner Diner, nowMinute int64) bool {
	if diner == nil {
		panic("Enqueue: diner must not be nil")
	}
	q.mu.Lock()
	if q.maxSize > 0 && len(q.items) >= q.maxSize {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, &OrderItem{Diner: diner, EnqueuedAt: nowMinute})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// RemoveByIdentity removes the first order held by diner (abandonment).
// Returns whether anything was removed.
func (q *ServiceQueue) RemoveByIdentity(diner Diner) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it.Diner == diner {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Dequeue pops the next order, FIFO. Non-blocking; returns nil when empty.
func (q *ServiceQueue) Dequeue() *OrderItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// WaitAndDequeue blocks until an order is available or timeoutMinutes
// simulated minutes have elapsed, then pops it. A negative timeout waits
// indefinitely. The wait is sliced one simulated minute at a time so stop
// requests are observed promptly. Returns nil on timeout or stop.
func (q *ServiceQueue) WaitAndDequeue(timeoutMinutes int64) *OrderItem {
	remaining := timeoutMinutes
	for {
		if item := q.Dequeue(); item != nil {
			return item
		}
		if q.clock.ShouldStop() {
			return nil
		}
		if timeoutMinutes >= 0 && remaining <= 0 {
			return nil
		}

		timer := time.NewTimer(q.clock.TickInterval())
		select {
		case <-q.wake:
			timer.Stop()
		case <-q.clock.Done():
			timer.Stop()
		case <-timer.C:
		}
		if timeoutMinutes >= 0 {
			remaining--
		}
	}
}
