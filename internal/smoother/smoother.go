// Package smoother turns a sparse, irregularly timed stream of landmark sets
// into a continuously queryable signal.
//
// A Smoother keeps the last two samples it saw and, on query, linearly
// interpolates between them at "now minus the average sample interval".
// Lagging by one interval keeps the query point inside the bracket of known
// samples, so in steady state the output is an interpolation rather than an
// extrapolation.
//
// A Smoother is owned by a single goroutine. It does no locking.
package smoother

import (
	"time"

	"github.com/normanking/hologram/internal/landmark"
)

// DefaultInterval is the interval estimate used before any samples arrive.
const DefaultInterval = 30 * time.Millisecond

// Smoother interpolates between the two most recent landmark samples.
type Smoother struct {
	count    int
	estimate time.Duration
	now      func() time.Time

	startTime time.Time
	endTime   time.Time
	start     landmark.Set
	end       landmark.Set
	curr      landmark.Set

	intervalSum   time.Duration
	intervalCount int
	avgInterval   time.Duration

	ready bool
}

// Option configures a Smoother.
type Option func(*Smoother)

// WithClock replaces the wall clock. Used by tests and replays.
func WithClock(now func() time.Time) Option {
	return func(s *Smoother) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Smoother for sets of count landmarks. A non-positive
// interval estimate falls back to DefaultInterval.
func New(count int, intervalEstimate time.Duration, opts ...Option) *Smoother {
	if intervalEstimate <= 0 {
		intervalEstimate = DefaultInterval
	}
	s := &Smoother{
		count:    count,
		estimate: intervalEstimate,
		now:      time.Now,
		start:    landmark.Zero(count),
		end:      landmark.Zero(count),
		curr:     landmark.Zero(count),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Reset returns the smoother to its neutral baseline: zero-valued output,
// not ready, interval average reseeded with the estimate.
func (s *Smoother) Reset() {
	now := s.now()
	s.endTime = now
	s.startTime = now.Add(-s.estimate)
	s.intervalSum = s.estimate
	s.intervalCount = 1
	s.avgInterval = s.estimate
	clear(s.start)
	clear(s.end)
	clear(s.curr)
	s.ready = false
}

// Update records a new sample at the current time. A nil or empty sample
// means tracking was lost and resets the smoother.
func (s *Smoother) Update(sample landmark.Set) {
	if len(sample) == 0 {
		s.Reset()
		return
	}
	now := s.now()

	if !s.ready {
		// First sample after a reset seeds both ends of the bracket.
		copy(s.start, sample)
		copy(s.end, sample)
		s.startTime = now.Add(-s.avgInterval)
		s.endTime = now
		s.ready = true
		return
	}

	s.start, s.end = s.end, s.start
	copy(s.end, sample)

	s.intervalSum += now.Sub(s.endTime)
	s.intervalCount++
	s.avgInterval = s.intervalSum / time.Duration(s.intervalCount)

	s.startTime = s.endTime
	s.endTime = now
}

// Query returns the interpolated set for now minus the average interval.
// The returned set is a scratch buffer owned by the smoother and is
// overwritten by the next call; clone it to keep it. When the smoother has
// no samples it returns the zero baseline and false.
func (s *Smoother) Query() (landmark.Set, bool) {
	if !s.ready {
		return s.curr, false
	}
	q := s.now().Add(-s.avgInterval)
	for i := range s.curr {
		for k := 0; k < 3; k++ {
			s.curr[i][k] = Interpolate(s.start[i][k], s.end[i][k], s.startTime, s.endTime, q)
		}
	}
	return s.curr, true
}

// Ready reports whether at least one sample arrived since the last reset.
func (s *Smoother) Ready() bool { return s.ready }

// AverageInterval returns the cumulative mean inter-sample interval.
func (s *Smoother) AverageInterval() time.Duration { return s.avgInterval }

// Len returns the number of landmarks per set.
func (s *Smoother) Len() int { return s.count }

// Interpolate evaluates the line through (startTime, startValue) and
// (endTime, endValue) at q. Beyond endTime this extrapolates. When both
// times are equal the end value is returned unchanged.
func Interpolate(startValue, endValue float64, startTime, endTime, q time.Time) float64 {
	span := endTime.Sub(startTime)
	if span == 0 {
		return endValue
	}
	ratio := float64(q.Sub(endTime)) / float64(span)
	return endValue + ratio*(endValue-startValue)
}
