package profiler

import "time"

// ProfilerOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are logged. Values <= 0 are ignored.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogf redirects the statistics line.
//
// Parameters:
//   - logf: a Printf-style function
//
// Returns:
//   - ProfilerOption: option function to apply
func WithLogf(logf func(format string, args ...any)) ProfilerOption {
	return func(p *Profiler) {
		p.logf = logf
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}
