package ledger

import (
	"sync"
	"time"
)

// IDSource hands out record ids.
type IDSource interface {
	NextID() int64
}

// observer is implemented by id sources that must skip ids already in use.
type observer interface {
	Observe(id int64)
}

// Sequence issues strictly increasing ids based on the wall clock in
// milliseconds, so ids look like the ones written by earlier versions.
type Sequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSequence returns a Sequence reading the system clock.
func NewSequence() *Sequence {
	return &Sequence{now: time.Now}
}

// NextID returns the current time in milliseconds, or last+1 if the clock
// has not moved past the previous id.
func (s *Sequence) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe makes sure future ids are larger than id.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}

// Counter issues 1, 2, 3, ... It is used where predictable ids are wanted.
type Counter struct {
	mu   sync.Mutex
	last int64
}

func (c *Counter) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last
}

func (c *Counter) Observe(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id > c.last {
		c.last = id
	}
}
