package query

import (
	"testing"

	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEmptyResultEdge(t *testing.T) {
	empty := &domain.SearchResult{Results: []domain.Movie{}, TotalPages: 0}
	found := &domain.SearchResult{Results: []domain.Movie{{ID: 1}}, TotalPages: 1}

	var edge EmptyResultEdge

	settled := State{Status: StatusSuccess, Data: empty, Generation: 1}
	assert.True(t, edge.Observe(settled), "first observation of an empty success fires")
	assert.False(t, edge.Observe(settled), "re-observing the same settle does not fire")

	assert.False(t, edge.Observe(State{Status: StatusFetching, Data: empty, Generation: 2}))
	assert.False(t, edge.Observe(State{Status: StatusSuccess, Data: found, Generation: 3}))
	assert.False(t, edge.Observe(State{Status: StatusError, Generation: 4}))

	assert.True(t, edge.Observe(State{Status: StatusSuccess, Data: empty, Generation: 5}))
}

func TestEmptyResultEdgeIgnoresOlderGenerations(t *testing.T) {
	empty := &domain.SearchResult{Results: []domain.Movie{}}
	found := &domain.SearchResult{Results: []domain.Movie{{ID: 1}}, TotalPages: 1}

	var edge EmptyResultEdge

	assert.False(t, edge.Observe(State{Status: StatusSuccess, Data: found, Generation: 6}))
	assert.False(t, edge.Observe(State{Status: StatusSuccess, Data: empty, Generation: 5}),
		"an empty settle that arrives after a newer one does not fire")
	assert.True(t, edge.Observe(State{Status: StatusSuccess, Data: empty, Generation: 7}))
}
