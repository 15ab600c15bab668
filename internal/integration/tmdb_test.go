package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// fakeTMDB serves /search/movie the way TMDb does and counts the searches it
// receives per query and page.
type fakeTMDB struct {
	server *httptest.Server

	mu       sync.Mutex
	searches map[string]int
}

func newFakeTMDB() *fakeTMDB {
	f := &fakeTMDB{searches: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/movie", f.searchMovies)
	f.server = httptest.NewServer(mux)

	return f
}

func (f *fakeTMDB) URL() string {
	return f.server.URL
}

func (f *fakeTMDB) Close() {
	f.server.Close()
}

func (f *fakeTMDB) Searches(query string, page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.searches[fmt.Sprintf("%s:%d", query, page)]
}

func (f *fakeTMDB) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.searches)
}

func (f *fakeTMDB) searchMovies(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+TestToken {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`)
		return
	}

	query := r.URL.Query().Get("query")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	f.mu.Lock()
	f.searches[fmt.Sprintf("%s:%d", query, page)]++
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch query {
	case TestFailQuery:
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status_code":43,"status_message":"Internal error"}`)
	case TestQuery:
		json.NewEncoder(w).Encode(moviePage(page, TestMoviesPerPage, TestTotalPages))
	default:
		json.NewEncoder(w).Encode(moviePage(page, 0, 0))
	}
}

func moviePage(page, count, totalPages int) map[string]any {
	results := make([]map[string]any, count)
	for i := range results {
		id := page*100 + i + 1
		results[i] = map[string]any{
			"id":                id,
			"title":             fmt.Sprintf("Movie %d", id),
			"original_title":    fmt.Sprintf("Movie %d", id),
			"original_language": "en",
			"overview":          fmt.Sprintf("Overview %d", id),
			"poster_path":       fmt.Sprintf("/poster%d.jpg", id),
			"backdrop_path":     fmt.Sprintf("/backdrop%d.jpg", id),
			"release_date":      "1999-03-30",
			"vote_average":      8.219,
			"vote_count":        26000,
			"adult":             false,
			"genre_ids":         []int{28, 878},
		}
	}

	return map[string]any{
		"page":          page,
		"results":       results,
		"total_pages":   totalPages,
		"total_results": totalPages * count,
	}
}
