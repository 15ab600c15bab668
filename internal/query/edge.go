package query

import "sync"

// EmptyResultEdge detects the transition into a settled, empty success. It
// fires at most once per generation and never for a generation older than one
// it has already observed, so settles delivered out of order stay silent.
type EmptyResultEdge struct {
	mu   sync.Mutex
	last uint64
}

func (e *EmptyResultEdge) Observe(s State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.Generation <= e.last {
		return false
	}

	e.last = s.Generation

	return s.Status == StatusSuccess && s.Data.IsEmpty()
}
