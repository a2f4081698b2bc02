package layer

import "time"

import "github.com/neurlang/netengine/channel"

// Instrument observes the accelerator path. It has no effect on processing.
type Instrument interface {
	Start(l *Layer, out *channel.Channel)
	End(l *Layer, out *channel.Channel)
}

// Stopwatch accumulates accelerator time per layer index.
// It is not safe for concurrent use.
type Stopwatch struct {
	started time.Time
	elapsed map[int]time.Duration
	calls   map[int]int
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{
		elapsed: make(map[int]time.Duration),
		calls:   make(map[int]int),
	}
}

func (s *Stopwatch) Start(l *Layer, out *channel.Channel) {
	s.started = time.Now()
}

func (s *Stopwatch) End(l *Layer, out *channel.Channel) {
	s.elapsed[l.Index()] += time.Since(s.started)
	s.calls[l.Index()]++
}

// Elapsed returns the accumulated time of the layer with the given index.
func (s *Stopwatch) Elapsed(index int) time.Duration {
	return s.elapsed[index]
}

// Calls returns how many channels of the layer were timed.
func (s *Stopwatch) Calls(index int) int {
	return s.calls[index]
}
