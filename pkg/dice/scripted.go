package dice

import "sync"

// Scripted is a Source that replays queued values, for tests and replays.
// IntN returns the next queued integer reduced into [0, n); Float64 returns the
// next queued float. An exhausted queue yields zero.
type Scripted struct {
	mu     sync.Mutex
	ints   []int
	floats []float64

	IntNCalls    int
	Float64Calls int
}

var _ Source = (*Scripted)(nil)

// NewScripted creates an empty scripted source.
func NewScripted() *Scripted {
	return &Scripted{}
}

// PushInts queues raw IntN results.
func (s *Scripted) PushInts(vals ...int) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints = append(s.ints, vals...)
	return s
}

// PushFloats queues Float64 results.
func (s *Scripted) PushFloats(vals ...float64) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.floats = append(s.floats, vals...)
	return s
}

// PushD20 queues the IntN result that makes D20 return roll.
func (s *Scripted) PushD20(roll int) *Scripted {
	return s.PushInts(roll - 1)
}

// PushBetween queues the IntN result that makes Between(lo, hi) return v.
func (s *Scripted) PushBetween(lo, v int) *Scripted {
	return s.PushInts(v - lo)
}

func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IntNCalls++
	if len(s.ints) == 0 || n <= 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Float64Calls++
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// Remaining reports how many queued ints and floats have not been consumed.
func (s *Scripted) Remaining() (ints, floats int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ints), len(s.floats)
}
