package viewport

import "time"

// Timer is a stoppable deferred callback. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler defers callbacks. The production scheduler delivers them on
// the UI event loop; tests substitute a manually stepped fake.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Clock returns the current time. Substituted in tests.
type Clock func() time.Time

// timerSlot names the renderer's deferred-callback purposes. Each slot
// holds at most one outstanding timer.
type timerSlot int

const (
	slotSharp   timerSlot = iota // pending sharp redraw
	slotPreview                  // throttled preview update
	slotSettle                   // post-drag high-quality redraw
	numSlots
)

// timerTable owns the per-purpose timer handles with cancel-and-replace
// semantics: scheduling into an occupied slot cancels the pending timer
// first, so no purpose ever has stacked callbacks. The table is only
// touched while holding the viewport lock; fired callbacks that care
// about slot occupancy clear their slot themselves once they run.
type timerTable struct {
	sched Scheduler
	slots [numSlots]Timer
}

// schedule replaces any pending timer in the slot with a new one.
func (t *timerTable) schedule(slot timerSlot, d time.Duration, fn func()) {
	t.cancel(slot)
	t.slots[slot] = t.sched.AfterFunc(d, fn)
}

// cancel stops a pending timer. Stopping a timer that already fired is a
// safe no-op, so a stale handle in the slot is harmless.
func (t *timerTable) cancel(slot timerSlot) {
	if t.slots[slot] != nil {
		t.slots[slot].Stop()
		t.slots[slot] = nil
	}
}

// clear drops the handle without stopping, used by a fired callback to
// mark its own slot vacant.
func (t *timerTable) clear(slot timerSlot) {
	t.slots[slot] = nil
}

// pending reports whether the slot holds a handle. Callbacks that rely
// on this must clear their slot when they fire.
func (t *timerTable) pending(slot timerSlot) bool {
	return t.slots[slot] != nil
}

func (t *timerTable) cancelAll() {
	for slot := timerSlot(0); slot < numSlots; slot++ {
		t.cancel(slot)
	}
}
