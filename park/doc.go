// Package park provides the concurrency core of the amusement park
// simulator.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - clock.go: the shared virtual-time driver every actor sleeps against
//   - queue.go: the dual-lane bounded queue and its boarding fairness rule
//   - ride.go: the per-ride state machine and the break/repair protocol
//
// # Architecture
//
// Every long-lived entity is one goroutine looping against the Clock: each
// ride, each food facility, each visitor, the failure injector, and the
// arrival generator (in park/arrival). There is no global scheduler; loops
// re-check Clock.ShouldStop every simulated minute and exit promptly.
//
// Lock discipline: each queue is mutated only under its own mutex, each
// ride's state only under that ride's mutex, and no lock is ever taken
// across entities. Cross-entity communication happens through queue
// enqueue/dequeue and one-shot notifications (NotifyRideFinished,
// NotifyOrderServed), which are best-effort: a receiver that already left
// the park yields an error the sender logs and absorbs.
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Rider: what a ride queue needs from its occupants
//   - Diner: what a service queue needs from its occupants
//   - RideChoiceStrategy: how a visitor picks its next ride
package park
