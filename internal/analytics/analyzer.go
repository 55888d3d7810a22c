// Package analytics derives metrics from canonical conversations: EV
// aggregation, status classification, timing statistics, filtering,
// sorting, and the dashboard trend, funnel and breakdown series.
//
// Every function is pure over its inputs. Records with unusable dates are
// skipped and reported to the Analyzer's logger; nothing here returns an
// error.
package analytics

import (
	"time"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/logger"
)

const (
	// DefaultWindowDays is the lookback of the daily trend series.
	DefaultWindowDays = 30
	// DefaultHighValueThreshold is the EV score at which a lead counts as high value.
	DefaultHighValueThreshold = 70.0
)

// Analyzer holds the clock, logger and tunables used by the time-relative
// computations. The zero value is not usable; call New.
type Analyzer struct {
	log                logger.Sink
	now                func() time.Time
	windowDays         int
	highValueThreshold float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger reports skipped records to s.
func WithLogger(s logger.Sink) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.log = s
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithWindowDays sets the trend lookback. Non-positive values are ignored.
func WithWindowDays(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.windowDays = days
		}
	}
}

// WithHighValueThreshold sets the EV score for high-value leads.
func WithHighValueThreshold(score float64) Option {
	return func(a *Analyzer) {
		if score > 0 {
			a.highValueThreshold = score
		}
	}
}

// New creates an Analyzer with the defaults above and a silent logger.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		log:                logger.Nop(),
		now:                time.Now,
		windowDays:         DefaultWindowDays,
		highValueThreshold: DefaultHighValueThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WindowDays returns the configured trend lookback.
func (a *Analyzer) WindowDays() int { return a.windowDays }

// today is the start of the current UTC day.
func (a *Analyzer) today() time.Time {
	now := a.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
