package app

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/metinatakli/movie-search/internal/notify"
	"github.com/metinatakli/movie-search/internal/query"
	"github.com/metinatakli/movie-search/internal/tmdb"
	"github.com/metinatakli/movie-search/ui"
)

const (
	posterSize   = "w500"
	backdropSize = "w1280"
)

type templateData struct {
	searchView
	ErrorMessage string
}

// searchView is everything a page or a state response shows for one session.
type searchView struct {
	Query          string
	Page           int
	State          query.State
	Movies         []domain.Movie
	ShowGrid       bool
	ShowPagination bool
	Pagination     []domain.PageItem
	Selected       *domain.Movie
	Notifications  []notify.Notification
	AutoRefresh    bool
}

// newSearchView renders st for the request's session and drains its pending
// notifications.
func (app *Application) newSearchView(r *http.Request, s *searchSession, st query.State) searchView {
	view := searchView{
		Query:         st.Key.Query,
		Page:          st.Key.Page,
		State:         st,
		Movies:        st.Movies(),
		AutoRefresh:   st.IsFetching(),
		Notifications: s.notifier.Drain(),
	}

	view.ShowGrid = !st.IsLoading() && !st.IsError() && len(view.Movies) > 0

	if view.Query != "" && st.TotalPages() > 1 {
		view.ShowPagination = true
		view.Pagination = domain.Paginate(st.TotalPages(), st.Key.Page-1, domain.DefaultPageRange, domain.DefaultMarginPages)
	}

	if movie, ok := app.selectedMovie(r.Context(), st); ok {
		view.Selected = &movie
	}

	return view
}

var functions = template.FuncMap{
	"posterURL": func(path string) string {
		return tmdb.ImageURL(path, posterSize)
	},
	"backdropURL": func(path string) string {
		return tmdb.ImageURL(path, backdropSize)
	},
}

func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := fs.Glob(ui.Files, "html/pages/*.tmpl")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		patterns := []string{
			"html/base.tmpl",
			"html/partials/*.tmpl",
			page,
		}

		ts, err := template.New(name).Funcs(functions).ParseFS(ui.Files, patterns...)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}

func (app *Application) render(w http.ResponseWriter, r *http.Request, status int, page string, data templateData) {
	ts, ok := app.templateCache[page]
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("the template %s does not exist", page))
		return
	}

	buf := new(bytes.Buffer)

	err := ts.ExecuteTemplate(buf, "base", data)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (app *Application) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	ts, ok := app.templateCache["error.tmpl"]
	if !ok {
		http.Error(w, message, status)
		return
	}

	buf := new(bytes.Buffer)

	err := ts.ExecuteTemplate(buf, "base", templateData{ErrorMessage: message})
	if err != nil {
		app.logError(r, err)
		http.Error(w, message, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
