package query

import (
	"time"

	"github.com/metinatakli/movie-search/internal/domain"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusFetching Status = "fetching"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
)

// State is an immutable snapshot of a controller. Exactly one Status holds at
// a time. Data is shared with the controller's cache and must not be mutated.
type State struct {
	Key           domain.SearchKey
	Status        Status
	Data          *domain.SearchResult
	IsPlaceholder bool
	Err           error
	Generation    uint64
	UpdatedAt     time.Time
}

// IsLoading is true only for the first fetch of a key when nothing can be shown.
func (s State) IsLoading() bool {
	return s.Status == StatusLoading
}

func (s State) IsFetching() bool {
	return s.Status == StatusLoading || s.Status == StatusFetching
}

func (s State) IsError() bool {
	return s.Status == StatusError
}

func (s State) IsSuccess() bool {
	return s.Status == StatusSuccess
}

func (s State) Movies() []domain.Movie {
	if s.Data == nil {
		return nil
	}

	return s.Data.Results
}

func (s State) TotalPages() int {
	if s.Data == nil {
		return 0
	}

	return s.Data.TotalPages
}
