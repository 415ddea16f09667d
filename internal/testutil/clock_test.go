package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock(t *testing.T) {
	c := NewStepClock()
	assert.Equal(t, int64(0), c.Seq())
	assert.Equal(t, Epoch, c.Now())

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Seq())
	assert.Equal(t, Epoch.Add(2*time.Second), c.Now())
}

func TestStepClock_Repeatable(t *testing.T) {
	a, b := NewStepClock(), NewStepClock()
	for range 10 {
		assert.Equal(t, a.Next(), b.Next())
		assert.Equal(t, a.Now(), b.Now())
	}
}

func TestStepClock_Concurrent(t *testing.T) {
	c := NewStepClock()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				c.Next()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(400), c.Seq())
}
