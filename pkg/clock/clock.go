package clock

import (
	"sync"
	"time"
)

// Clock abstracts the wall clock so schedule evaluation and pollers can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

// Manual is a controllable time source for tests.
type Manual struct {
	mu      sync.Mutex
	current time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{current: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the updated time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	m.current = m.current.Add(d)
	updated := m.current
	m.mu.Unlock()
	return updated
}
