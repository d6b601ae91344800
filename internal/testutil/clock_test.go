package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClockStable(t *testing.T) {
	c := NewFixedClock()
	assert.Equal(t, Epoch, c.Now())
	assert.Equal(t, c.Now(), c.Now())
}

func TestFixedClockAdvanceAndReset(t *testing.T) {
	c := NewFixedClock()
	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, Epoch.Add(1500*time.Millisecond), c.Now())

	c.Reset()
	assert.Equal(t, Epoch, c.Now())
}

func TestFixedClockConcurrent(t *testing.T) {
	c := NewFixedClock()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Second)
			_ = c.Now()
		}()
	}
	wg.Wait()
	assert.Equal(t, Epoch.Add(50*time.Second), c.Now())
}
