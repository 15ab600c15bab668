package app

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/movie-search/api"
	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/metinatakli/movie-search/internal/notify"
)

func (app *Application) home(w http.ResponseWriter, r *http.Request) {
	s := app.searchSession(r)
	st := app.settledState(r, s)

	data := templateData{
		searchView: app.newSearchView(r, s, st),
	}

	app.render(w, r, http.StatusOK, "home.tmpl", data)
}

func (app *Application) submitSearch(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	s := app.searchSession(r)

	input := api.SearchRequest{
		Query: strings.TrimSpace(r.PostForm.Get("query")),
	}

	err = app.validateSearch(s.notifier, input)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	app.search(r, s, domain.NewSearchKey(input.Query, 1))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// validateSearch checks a submitted search and reports a rejected one to the
// user through n.
func (app *Application) validateSearch(n notify.Notifier, input api.SearchRequest) error {
	err := app.validator.Struct(input)
	if err != nil {
		n.Error(MsgEmptyQuery)
	}

	return err
}

// changePage handles a pagination indicator. The form carries the 0-based
// index of the selected page.
func (app *Application) changePage(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	selected, err := strconv.Atoi(r.PostForm.Get("selected"))
	if err != nil || selected < 0 {
		app.badRequestResponse(w, r, domain.ErrInvalidPage)
		return
	}

	s := app.searchSession(r)
	current := s.controller.State().Key

	if !current.Enabled() {
		app.contextGetLogger(r).Warn("page change without an active search")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	app.search(r, s, domain.NewSearchKey(current.Query, selected+1))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *Application) selectMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.Atoi(chi.URLParam(r, "movieId"))
	if err != nil || movieID < 1 {
		app.notFoundResponse(w, r)
		return
	}

	s := app.searchSession(r)

	if _, ok := s.controller.State().Data.FindMovie(movieID); !ok {
		app.contextGetLogger(r).Warn("selected movie is not in the current results", "movie_id", movieID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeySelected.String(), movieID)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *Application) clearSelection(w http.ResponseWriter, r *http.Request) {
	app.sessionManager.Remove(r.Context(), SessionKeySelected.String())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
