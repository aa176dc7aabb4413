package problems

// Set is an ordered sequence of problems in discovery order plus a
// uniqueness index keyed by message, preserving first-discovery order.
// Invariants: UniqueCount() <= TotalCount(), and UniqueCount() == 0
// exactly when TotalCount() == 0.
type Set struct {
	all         []Problem
	uniqueOrder []string
	firstByMsg  map[string]int // message -> index into all of first occurrence
}

// NewSet returns an empty problem set.
func NewSet() *Set {
	return &Set{firstByMsg: map[string]int{}}
}

func (s *Set) add(p Problem) {
	if _, seen := s.firstByMsg[p.Message]; !seen {
		s.firstByMsg[p.Message] = len(s.all)
		s.uniqueOrder = append(s.uniqueOrder, p.Message)
	}
	s.all = append(s.all, p)
}

// TotalCount returns the number of recorded problems, duplicates included.
func (s *Set) TotalCount() int { return len(s.all) }

// UniqueCount returns the number of distinct problem messages.
func (s *Set) UniqueCount() int { return len(s.uniqueOrder) }

// All returns every recorded problem in discovery order.
func (s *Set) All() []Problem {
	out := make([]Problem, len(s.all))
	copy(out, s.all)
	return out
}

// Unique returns the first occurrence of each distinct message, in
// first-discovery order.
func (s *Set) Unique() []Problem {
	out := make([]Problem, 0, len(s.uniqueOrder))
	for _, msg := range s.uniqueOrder {
		out = append(out, s.all[s.firstByMsg[msg]])
	}
	return out
}

// HasErrors reports whether any recorded problem is error-kind.
func (s *Set) HasErrors() bool {
	for _, p := range s.all {
		if p.Kind == KindError {
			return true
		}
	}
	return false
}
