package event

import "github.com/katanacore/machine/errors"

// ID is a stable index into the queue's fixed-size entry table.
type ID int

// Handler is invoked when an event's due time has arrived. now is the
// virtual time (nanoseconds) execute_at was called with, not the time the
// event was originally scheduled for; a handler that re-schedules itself
// should compute its next delay relative to now.
type Handler func(q *Queue, now int64, id ID)

const sentinel = -1

const oneSecondNanos = int64(1_000_000_000)

type entry struct {
	handler   Handler
	scheduled bool
	long      bool
	due       int64 // short list: absolute nanos on q.clock
	secs      int64 // long list: remaining whole seconds
	nanos     int64 // long list: nanos-into-second once migrated
	next      int
}

// Queue is the event queue described in spec.md §4.C. Zero value is not
// usable; use New.
type Queue struct {
	entries   []entry
	shortHead int
	longHead  int
	clock     int64
	sweepLeft int64
}

// New allocates a queue with room for capacity distinct event ids.
func New(capacity int) *Queue {
	return &Queue{
		entries:   make([]entry, capacity),
		shortHead: sentinel,
		longHead:  sentinel,
		sweepLeft: oneSecondNanos,
	}
}

// Register reserves the next free id and binds handler to it. Ids are
// assigned sequentially starting at 0; callers conventionally register once
// at init time for every ASIC/module event they raise.
func (q *Queue) Register(handler Handler) (ID, error) {
	for i := range q.entries {
		if q.entries[i].handler == nil {
			q.entries[i] = entry{handler: handler, next: sentinel}
			return ID(i), nil
		}
	}
	return 0, errors.Errorf("event: no free slot for new handler (capacity %d)", len(q.entries))
}

// Clock returns the queue's current virtual time in nanoseconds.
func (q *Queue) Clock() int64 { return q.clock }

// Schedule enqueues id onto the short list at q.clock+nanosFromNow,
// cancelling any previous schedule for id first (spec.md §4.C).
func (q *Queue) Schedule(id ID, nanosFromNow int64) {
	q.Cancel(id)
	e := &q.entries[id]
	e.due = q.clock + nanosFromNow
	e.scheduled = true
	e.long = false
	q.insertShort(int(id))
}

// ScheduleLong enqueues id onto the long list with a (seconds, nanos)
// countdown. If secs == 0 this falls through to Schedule (spec.md §4.C).
func (q *Queue) ScheduleLong(id ID, secs, nanos int64) {
	if secs == 0 {
		q.Schedule(id, nanos)
		return
	}
	q.Cancel(id)
	e := &q.entries[id]
	e.secs = secs
	e.nanos = nanos
	e.scheduled = true
	e.long = true
	e.next = q.longHead
	q.longHead = int(id)
}

// Cancel removes id from whichever list holds it. Cancelling an
// unscheduled id is a no-op (spec.md §4.C).
func (q *Queue) Cancel(id ID) {
	e := &q.entries[id]
	if !e.scheduled {
		return
	}
	if e.long {
		q.longHead = unlink(q.entries, q.longHead, int(id))
	} else {
		q.shortHead = unlink(q.entries, q.shortHead, int(id))
	}
	e.scheduled = false
	e.next = sentinel
}

func unlink(entries []entry, head, id int) int {
	if head == id {
		return entries[id].next
	}
	for i := head; i != sentinel; i = entries[i].next {
		if entries[i].next == id {
			entries[i].next = entries[id].next
			return head
		}
	}
	return head
}

// insertShort inserts id into the short list in ascending order of due time.
func (q *Queue) insertShort(id int) {
	due := q.entries[id].due
	if q.shortHead == sentinel || q.entries[q.shortHead].due > due {
		q.entries[id].next = q.shortHead
		q.shortHead = id
		return
	}
	prev := q.shortHead
	for q.entries[prev].next != sentinel && q.entries[q.entries[prev].next].due <= due {
		prev = q.entries[prev].next
	}
	q.entries[id].next = q.entries[prev].next
	q.entries[prev].next = id
}

// NextTime returns the short list head's due time, or ok==false if the
// short list is empty (the NOT_SCHEDULED sentinel).
func (q *Queue) NextTime() (due int64, ok bool) {
	if q.shortHead == sentinel {
		return 0, false
	}
	return q.entries[q.shortHead].due, true
}

// ExecuteAt pops and invokes every short-list entry due at or before now, in
// order. The head is re-read after each handler call rather than cached,
// since handlers commonly re-schedule the same id (spec.md §9).
func (q *Queue) ExecuteAt(now int64) {
	for q.shortHead != sentinel && q.entries[q.shortHead].due <= now {
		id := q.shortHead
		q.shortHead = q.entries[id].next
		q.entries[id].scheduled = false
		q.entries[id].next = sentinel
		q.entries[id].handler(q, now, ID(id))
	}
}

// RunSlice advances the queue's clock by ns and performs the long-list sweep
// whenever the running countdown crosses a one-second boundary
// (spec.md §4.C "Long-list sweep").
func (q *Queue) RunSlice(ns int64) {
	q.clock += ns
	q.sweepLeft -= ns
	for q.sweepLeft <= 0 {
		q.sweepLeft += oneSecondNanos
		q.sweepLong()
	}
}

func (q *Queue) sweepLong() {
	prev := sentinel
	cur := q.longHead
	for cur != sentinel {
		next := q.entries[cur].next
		q.entries[cur].secs--
		if q.entries[cur].secs <= 0 {
			if prev == sentinel {
				q.longHead = next
			} else {
				q.entries[prev].next = next
			}
			q.entries[cur].long = false
			q.entries[cur].due = q.clock + q.entries[cur].nanos
			q.entries[cur].scheduled = false
			id := cur
			q.entries[id].scheduled = true
			q.insertShort(id)
		} else {
			prev = cur
		}
		cur = next
	}
}
