package ledger

// Sequence issues monotonically increasing ids starting at 1.
type Sequence struct {
	last int64
}

func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}

// Observe records an id issued elsewhere so Next never returns it.
func (s *Sequence) Observe(id int64) {
	if id > s.last {
		s.last = id
	}
}

func (s *Sequence) Last() int64 { return s.last }
