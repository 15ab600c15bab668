package mocks

import (
	"context"
	"sync/atomic"

	"github.com/metinatakli/movie-search/internal/domain"
)

type MockMovieFetcher struct {
	SearchMoviesFunc func(ctx context.Context, query string, page int) (*domain.SearchResult, error)
	calls            atomic.Int64
}

func (m *MockMovieFetcher) SearchMovies(ctx context.Context, query string, page int) (*domain.SearchResult, error) {
	m.calls.Add(1)
	return m.SearchMoviesFunc(ctx, query, page)
}

// Calls returns how many searches reached the mock.
func (m *MockMovieFetcher) Calls() int {
	return int(m.calls.Load())
}
