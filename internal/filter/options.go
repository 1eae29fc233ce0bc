package filter

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Builder or Evaluator
type Option func(*options)

type options struct {
	loc *time.Location
	now func() time.Time
	lg  *zap.Logger
}

func newOptions(opts []Option) options {
	o := options{
		loc: time.UTC,
		now: time.Now,
		lg:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) clock() clock {
	return clock{now: o.now, loc: o.loc}
}

// WithLocation sets the time zone used for day and week boundaries.
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithClock overrides the source of the current instant
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used to report skipped rules
func WithLogger(lg *zap.Logger) Option {
	return func(o *options) {
		if lg != nil {
			o.lg = lg
		}
	}
}
