package driver

import "time"

type SchedulerOpt func(*Scheduler)

// WithClock replaces the time source used to measure elapsed time.
func WithClock(now func() time.Time) SchedulerOpt {
	return func(s *Scheduler) {
		s.now = now
	}
}
