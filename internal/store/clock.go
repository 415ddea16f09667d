package store

import "sync/atomic"

// Clock hands out the logical sequence numbers that order every stored
// record. Reads sort on seq, never on wall time, so a replayed journal
// sees rows in the order they were written.
//
// Clock is safe for concurrent use. The preview server shares one clock
// between request handlers.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start, typically the
// store's LastSeq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
