package inventory

import "sync/atomic"

// Clock is a monotonic logical counter.
//
// The first call to Next returns 1. Values are never reused, which gives
// item ids and log sequence numbers their never-decremented guarantee.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next value and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
