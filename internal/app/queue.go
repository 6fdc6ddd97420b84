package app

import (
	"context"

	"github.com/bft-labs/gatecall/internal/domain"
)

// PendingEntry is a request held back because the gate was closed.
// It is owned by the Queue until it is dispatched or dropped.
type PendingEntry struct {
	ctx              context.Context
	req              domain.Request
	future           *domain.Future
	retriesRemaining int

	// failure is set when the sweep drops the entry.
	failure *domain.Failure
}

func newPendingEntry(ctx context.Context, req domain.Request, future *domain.Future) *PendingEntry {
	return &PendingEntry{
		ctx:              ctx,
		req:              req,
		future:           future,
		retriesRemaining: req.Retries(),
	}
}

// Request returns the held request.
func (e *PendingEntry) Request() domain.Request { return e.req }

// RetriesRemaining returns how many more ticks the entry may wait.
func (e *PendingEntry) RetriesRemaining() int { return e.retriesRemaining }

// Verdict is the decision a sweep makes for one entry.
type Verdict int

const (
	Keep Verdict = iota
	Dispatch
	Drop
)

// Queue is the FIFO collection of pending entries. It is not safe for
// concurrent use; the dispatcher serializes access with its own lock.
type Queue struct {
	entries []*PendingEntry
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an entry.
func (q *Queue) Push(e *PendingEntry) {
	q.entries = append(q.entries, e)
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Entries returns a snapshot of the pending entries in insertion order.
func (q *Queue) Entries() []*PendingEntry {
	return append([]*PendingEntry(nil), q.entries...)
}

// Sweep visits every entry of a snapshot in insertion order and commits the
// removals only after the whole pass, so no entry is skipped when an earlier
// one leaves the queue. Dispatched and dropped entries are returned in
// visitation order.
func (q *Queue) Sweep(visit func(*PendingEntry) Verdict) (dispatched, dropped []*PendingEntry) {
	snapshot := q.entries
	kept := make([]*PendingEntry, 0, len(snapshot))

	for _, e := range snapshot {
		switch visit(e) {
		case Dispatch:
			dispatched = append(dispatched, e)
		case Drop:
			dropped = append(dropped, e)
		default:
			kept = append(kept, e)
		}
	}

	q.entries = kept
	return dispatched, dropped
}

// Drain removes and returns all entries.
func (q *Queue) Drain() []*PendingEntry {
	out := q.entries
	q.entries = nil
	return out
}
