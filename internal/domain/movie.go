package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// TMDb sends vote_average as a JSON number; keep it a number on the way out.
	decimal.MarshalJSONWithoutQuotes = true
}

// Movie is a single entry of a TMDb search result page.
type Movie struct {
	ID               int             `json:"id"`
	Title            string          `json:"title"`
	OriginalTitle    string          `json:"original_title,omitempty"`
	OriginalLanguage string          `json:"original_language,omitempty"`
	Overview         string          `json:"overview"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
	ReleaseDate      string          `json:"release_date"`
	VoteAverage      decimal.Decimal `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`
}

// Year returns the release year or an empty string when TMDb has no date.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}

	return m.ReleaseDate[:4]
}

// Rating formats the vote average the way it is shown on tiles and in the overlay.
func (m Movie) Rating() string {
	return m.VoteAverage.StringFixed(1)
}

// SearchResult is one page of matching movies as reported by the provider.
// TotalPages is taken verbatim from the response.
type SearchResult struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// IsEmpty reports whether the page carries no movies.
func (r *SearchResult) IsEmpty() bool {
	return r == nil || len(r.Results) == 0
}

// FindMovie looks up a movie on this page by its TMDb id.
func (r *SearchResult) FindMovie(id int) (Movie, bool) {
	if r == nil {
		return Movie{}, false
	}

	for _, m := range r.Results {
		if m.ID == id {
			return m, true
		}
	}

	return Movie{}, false
}

// SearchKey identifies one fetch/result unit.
type SearchKey struct {
	Query string
	Page  int
}

func NewSearchKey(query string, page int) SearchKey {
	if page < 1 {
		page = 1
	}

	return SearchKey{Query: strings.TrimSpace(query), Page: page}
}

// Enabled reports whether the key is allowed to trigger a fetch.
func (k SearchKey) Enabled() bool {
	return k.Query != ""
}

func (k SearchKey) String() string {
	return fmt.Sprintf("movies:%s:%d", k.Query, k.Page)
}

// MovieFetcher issues a single search request for a query and page.
type MovieFetcher interface {
	SearchMovies(ctx context.Context, query string, page int) (*SearchResult, error)
}
