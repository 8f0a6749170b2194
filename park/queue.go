// Implements the RideQueue, the capacity-bounded dual-lane queue visitors
// wait in before boarding. Producers (visitors) enqueue or abandon; the
// owning ride extracts fairness-ordered batches once per boarding tick.

package park

import (
	"sync"
	"time"
)

// Rider is the narrow contract the core needs from whoever waits in a ride
// queue. Implemented by Visitor; the queue itself treats the payload as
// opaque apart from identity.
type Rider interface {
	// NotifyRideFinished delivers the end-of-ride signal for one boarding
	// cycle. Best-effort from the ride's point of view: a non-nil error is
	// logged by the caller and never propagated.
	NotifyRideFinished(rideName string, minute int64) error
}

// QueueItem wraps a rider together with the simulated minute it joined and
// the lane it was admitted to. Immutable after creation; owned by the queue
// until dequeued, then by the caller.
type QueueItem struct {
	Rider      Rider
	EnqueuedAt int64
	Priority   bool
}

// RideQueue is a thread-safe queue with a regular lane and an optional
// priority (fastpass) lane, each with an independent capacity.
//
// Fairness rule for boarding: take at most one item from the priority lane
// first, then fill remaining seats from the regular lane in FIFO order, then
// drain further from priority only if seats remain. Priority holders get a
// guaranteed head start every cycle without starving the regular lane.
type RideQueue struct {
	clock           *Clock
	supportPriority bool

	mu   sync.Mutex // guards reg and pri
	reg  []*QueueItem
	pri  []*QueueItem
	wake chan struct{} // buffered 1: an enqueue wakes exactly one waiter

	maxRegular  int // 0 = unbounded
	maxPriority int // 0 = unbounded
}

// NewRideQueue creates a queue for one ride. maxRegular/maxPriority of zero
// mean unbounded; negative values are programmer errors.
func NewRideQueue(clock *Clock, supportPriority bool, maxRegular, maxPriority int) *RideQueue {
	if clock == nil {
		panic("NewRideQueue: clock must not be nil")
	}
	if maxRegular < 0 || maxPriority < 0 {
		panic("NewRideQueue: lane capacity must not be negative")
	}
	return &RideQueue{
		clock:           clock,
		supportPriority: supportPriority,
		wake:            make(chan struct{}, 1),
		maxRegular:      maxRegular,
		maxPriority:     maxPriority,
	}
}

// SupportsPriority reports whether this queue has a fastpass lane.
func (q *RideQueue) SupportsPriority() bool {
	return q.supportPriority
}

// ----------------------- Query helpers -----------------------

// Size returns the total number of waiting items across both lanes.
func (q *RideQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.reg) + len(q.pri)
}

// LenRegular returns the regular lane length.
func (q *RideQueue) LenRegular() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.reg)
}

// LenPriority returns the priority lane length.
func (q *RideQueue) LenPriority() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pri)
}

// ----------------------- Core operations -----------------------

// Enqueue admits rider to the queue at nowMinute. A priority enqueue on a
// queue without fastpass support is silently treated as regular. Returns
// false when the target lane is at capacity; the caller decides the fallback.
func (q *RideQueue) Enqueue(rider Rider, nowMinute int64, priority bool) bool {
	if rider == nil {
		panic("Enqueue: rider must not be nil")
	}
	item := &QueueItem{Rider: rider, EnqueuedAt: nowMinute, Priority: priority && q.supportPriority}

	q.mu.Lock()
	if item.Priority {
		if q.maxPriority > 0 && len(q.pri) >= q.maxPriority {
			q.mu.Unlock()
			return false
		}
		q.pri = append(q.pri, item)
	} else {
		if q.maxRegular > 0 && len(q.reg) >= q.maxRegular {
			q.mu.Unlock()
			return false
		}
		q.reg = append(q.reg, item)
	}
	q.mu.Unlock()

	// Wake one waiting ride goroutine. Non-blocking: a pending wake is
	// enough, waiters re-check the predicate anyway.
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// RemoveByIdentity removes the first item holding rider from whichever lane
// has it (abandonment). O(n), but park queues are small. Returns whether
// anything was removed.
func (q *RideQueue) RemoveByIdentity(rider Rider) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if removed, rest := removeRider(q.reg, rider); removed {
		q.reg = rest
		return true
	}
	if removed, rest := removeRider(q.pri, rider); removed {
		q.pri = rest
		return true
	}
	return false
}

func removeRider(lane []*QueueItem, rider Rider) (bool, []*QueueItem) {
	for i, it := range lane {
		if it.Rider == rider {
			return true, append(lane[:i], lane[i+1:]...)
		}
	}
	return false, lane
}

// WaitUntilNonEmpty blocks until either lane is non-empty or timeoutMinutes
// simulated minutes have elapsed. A negative timeout waits indefinitely.
// The wait is sliced one simulated minute at a time so a stop request is
// observed promptly; spurious wakeups are harmless because the predicate is
// re-checked, not the wake event. Returns true when the queue is non-empty.
func (q *RideQueue) WaitUntilNonEmpty(timeoutMinutes int64) bool {
	remaining := timeoutMinutes
	for {
		q.mu.Lock()
		nonEmpty := len(q.reg) > 0 || len(q.pri) > 0
		q.mu.Unlock()
		if nonEmpty {
			return true
		}
		if q.clock.ShouldStop() {
			return false
		}
		if timeoutMinutes >= 0 && remaining <= 0 {
			return false
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

// ExtractBoardingBatch removes and returns up to capacity items for one ride
// cycle, applying the fairness rule. Non-blocking; the removal is atomic
// under the queue lock, so no item can be handed out twice.
func (q *RideQueue) ExtractBoardingBatch(capacity int) []*QueueItem {
	if capacity <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	var taken []*QueueItem

	// 1) At most one from priority first.
	if q.supportPriority && len(q.pri) > 0 {
		taken = append(taken, q.pri[0])
		q.pri = q.pri[1:]
	}

	// 2) Fill remaining seats from the regular lane, FIFO.
	for len(taken) < capacity && len(q.reg) > 0 {
		taken = append(taken, q.reg[0])
		q.reg = q.reg[1:]
	}

	// 3) Only if seats remain, drain further from priority.
	for len(taken) < capacity && len(q.pri) > 0 {
		taken = append(taken, q.pri[0])
		q.pri = q.pri[1:]
	}

	return taken
}
