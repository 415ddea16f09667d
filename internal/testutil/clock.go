package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall time a StepClock reports before its first tick.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a fake clock for scenario runs. Every Next call advances a
// logical sequence by one and the reported wall time by one second, so
// trace seqs and asset or instance timestamps come out identical on every
// run.
type StepClock struct {
	mu  sync.Mutex
	seq int64
}

// NewStepClock returns a clock at seq 0 and Epoch.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Next advances the clock and returns the new seq. The first call returns 1.
func (c *StepClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Seq returns the current seq without advancing.
func (c *StepClock) Seq() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Now reports Epoch plus one second per tick. It has the shape of the
// WithNow options taken by assets, prefab and canvas.
func (c *StepClock) Now() time.Time {
	return Epoch.Add(time.Duration(c.Seq()) * time.Second)
}
