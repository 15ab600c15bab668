package app

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-search/api"
	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/metinatakli/movie-search/internal/notify"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"
)

// SearchMoviesHandler runs a single search outside of any session state.
func (app *Application) SearchMoviesHandler(w http.ResponseWriter, r *http.Request) {
	var params api.SearchMoviesParams

	err := runtime.BindQueryParameter("form", true, true, "query", r.URL.Query(), &params.Query)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &params.Page)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	page := 1
	if params.Page != nil {
		page = *params.Page
	}

	key := domain.NewSearchKey(params.Query, page)

	result, err := app.fetcher.SearchMovies(r.Context(), key.Query, key.Page)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSearchResponse(result), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	s := app.searchSession(r)

	app.writeState(w, r, s)
}

func (app *Application) SubmitSearchHandler(w http.ResponseWriter, r *http.Request) {
	var input api.SearchRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	s := app.searchSession(r)

	err = app.validateSearch(s.notifier, input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	app.search(r, s, domain.NewSearchKey(input.Query, 1))

	app.writeState(w, r, s)
}

func (app *Application) ChangePageHandler(w http.ResponseWriter, r *http.Request) {
	var input api.PageRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	s := app.searchSession(r)
	current := s.controller.State().Key

	if !current.Enabled() {
		app.conflictResponse(w, r, ErrNoActiveSearch)
		return
	}

	app.search(r, s, domain.NewSearchKey(current.Query, input.Page))

	app.writeState(w, r, s)
}

func (app *Application) SelectMovieHandler(w http.ResponseWriter, r *http.Request) {
	var input api.SelectionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	s := app.searchSession(r)

	if _, ok := s.controller.State().Data.FindMovie(input.MovieId); !ok {
		app.errorResponse(w, r, http.StatusNotFound, ErrMovieNotListed)
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeySelected.String(), input.MovieId)

	app.writeState(w, r, s)
}

func (app *Application) ClearSelectionHandler(w http.ResponseWriter, r *http.Request) {
	app.sessionManager.Remove(r.Context(), SessionKeySelected.String())

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) writeState(w http.ResponseWriter, r *http.Request, s *searchSession) {
	st := app.settledState(r, s)
	view := app.newSearchView(r, s, st)

	err := app.writeJSON(w, http.StatusOK, toStateResponse(view), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toStateResponse(view searchView) api.StateResponse {
	st := view.State

	resp := api.StateResponse{
		Query:         view.Query,
		Page:          view.Page,
		Status:        string(st.Status),
		IsLoading:     st.IsLoading(),
		IsFetching:    st.IsFetching(),
		IsError:       st.IsError(),
		IsPlaceholder: st.IsPlaceholder,
		Results:       toApiMovies(view.Movies),
		TotalPages:    st.TotalPages(),
		Pagination:    toApiPageItems(view.Pagination),
		Notifications: toApiNotifications(view.Notifications),
	}

	if st.Err != nil {
		message := ErrUpstream
		resp.Error = &message
	}

	if view.Selected != nil {
		selected := toApiMovie(*view.Selected)
		resp.Selected = &selected
	}

	return resp
}

func toSearchResponse(result *domain.SearchResult) api.SearchResponse {
	if result == nil {
		return api.SearchResponse{Results: []api.Movie{}}
	}

	return api.SearchResponse{
		Page:         result.Page,
		Results:      toApiMovies(result.Results),
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalResults,
	}
}

func toApiMovies(movies []domain.Movie) []api.Movie {
	out := make([]api.Movie, len(movies))
	for i, m := range movies {
		out[i] = toApiMovie(m)
	}

	return out
}

func toApiMovie(m domain.Movie) api.Movie {
	return api.Movie{
		Id:            m.ID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Overview:      m.Overview,
		PosterPath:    m.PosterPath,
		BackdropPath:  m.BackdropPath,
		ReleaseDate:   m.ReleaseDate,
		VoteAverage:   m.VoteAverage.InexactFloat64(),
		VoteCount:     m.VoteCount,
	}
}

func toApiPageItems(items []domain.PageItem) []api.PageItem {
	out := make([]api.PageItem, len(items))
	for i, item := range items {
		out[i] = api.PageItem{
			Kind:     string(item.Kind),
			Index:    item.Index,
			Label:    item.Label,
			Active:   item.Active,
			Disabled: item.Disabled,
		}
	}

	return out
}

func toApiNotifications(notifications []notify.Notification) []api.Notification {
	out := make([]api.Notification, 0, len(notifications))
	for _, n := range notifications {
		id, err := uuid.Parse(n.ID)
		if err != nil {
			continue
		}

		out = append(out, api.Notification{
			Id:        types.UUID(id),
			Level:     string(n.Level),
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}

	return out
}
