// Package api holds the JSON contract of the movie search service.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

// SearchMoviesParams are the query parameters of GET /api/v1/movies.
type SearchMoviesParams struct {
	Query string `json:"query" validate:"notblank"`
	Page  *int   `json:"page,omitempty" validate:"omitempty,min=1,max=500"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"notblank"`
}

type PageRequest struct {
	Page int `json:"page" validate:"min=1"`
}

type SelectionRequest struct {
	MovieId int `json:"movieId" validate:"min=1"`
}

type Movie struct {
	Id            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
}

type SearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type PageItem struct {
	Kind     string `json:"kind"`
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Active   bool   `json:"active"`
	Disabled bool   `json:"disabled"`
}

type Notification struct {
	Id        openapi_types.UUID `json:"id"`
	Level     string             `json:"level"`
	Message   string             `json:"message"`
	CreatedAt time.Time          `json:"createdAt"`
}

type StateResponse struct {
	Query         string         `json:"query"`
	Page          int            `json:"page"`
	Status        string         `json:"status"`
	IsLoading     bool           `json:"isLoading"`
	IsFetching    bool           `json:"isFetching"`
	IsError       bool           `json:"isError"`
	IsPlaceholder bool           `json:"isPlaceholder"`
	Error         *string        `json:"error,omitempty"`
	Results       []Movie        `json:"results"`
	TotalPages    int            `json:"totalPages"`
	Pagination    []PageItem     `json:"pagination"`
	Selected      *Movie         `json:"selected,omitempty"`
	Notifications []Notification `json:"notifications"`
}
