package clock

import "time"

// Clock abstracts time so TTL behavior is testable.
type Clock interface {
	Now() time.Time
}

// RealClock uses system time.
type RealClock struct{}

func NewRealClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a settable clock for tests.
type MockClock struct {
	current time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{current: start}
}

func (m *MockClock) Now() time.Time {
	return m.current
}

func (m *MockClock) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}
