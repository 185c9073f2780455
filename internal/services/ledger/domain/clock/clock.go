// Package clock supplies the logical day used by every time-gated rule.
//
// Deciders never read wall time. The engine reads Today once per command and
// hands the value to the decider, so replaying a journal reproduces the same
// decisions.
package clock

import (
	"strconv"
	"sync"
	"time"
)

// Day counts whole days since the Unix epoch.
type Day uint64

// String renders the day number.
func (d Day) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// Clock reports the current day. Implementations must be non-decreasing.
type Clock interface {
	Today() Day
}

// Func adapts a function to Clock.
type Func func() Day

// Today implements Clock.
func (f Func) Today() Day { return f() }

// System derives the day from wall time in UTC.
type System struct {
	Now func() time.Time
}

// Today implements Clock.
func (s System) Today() Day {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return FromTime(now())
}

// FromTime converts a timestamp to its UTC day.
func FromTime(t time.Time) Day {
	secs := t.UTC().Unix()
	if secs < 0 {
		return 0
	}
	return Day(secs / 86400)
}

// Manual is a settable clock for tests and scripted runs. Setting an
// earlier day is ignored.
type Manual struct {
	mu  sync.Mutex
	day Day
}

// NewManual starts a manual clock at day.
func NewManual(day Day) *Manual {
	return &Manual{day: day}
}

// Today implements Clock.
func (m *Manual) Today() Day {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.day
}

// Set moves the clock to day when day is not in the past.
func (m *Manual) Set(day Day) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if day > m.day {
		m.day = day
	}
}

// Advance moves the clock forward by days.
func (m *Manual) Advance(days uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.day += Day(days)
}

// AddDays returns d+days and false when the sum overflows.
func AddDays(d Day, days uint64) (Day, bool) {
	sum := uint64(d) + days
	if sum < uint64(d) {
		return 0, false
	}
	return Day(sum), true
}
