package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-search/api"
	appvalidator "github.com/metinatakli/movie-search/internal/validator"
)

const (
	ErrInternalServer   = "The server encountered a problem and could not process your request"
	ErrNotFound         = "The requested resource not found"
	ErrMethodNotAllowed = "The %s method is not supported for this resource"
	ErrFailedValidation = "One or more fields have invalid values"
	ErrUpstream         = "The movie provider could not be reached, please try again"
	ErrNoActiveSearch   = "There is no active search to change the page of"
	ErrMovieNotListed   = "The movie is not part of the current results"
)

func (app *Application) logError(r *http.Request, err error) {
	app.contextGetLogger(r).Error(err.Error())
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	if !isAPIRequest(r) {
		app.renderError(w, r, http.StatusInternalServerError, ErrInternalServer)
		return
	}

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	if !isAPIRequest(r) {
		app.renderError(w, r, http.StatusNotFound, ErrNotFound)
		return
	}

	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(ErrMethodNotAllowed, r.Method))
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	if !isAPIRequest(r) {
		app.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *Application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.contextGetLogger(r).Warn("movie provider request failed", "error", err)
	app.errorResponse(w, r, http.StatusBadGateway, ErrUpstream)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	fields := make([]api.ValidationError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, api.ValidationError{
			Field: jsonFieldName(fieldErr.Field()),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	app.validationErrorResponse(w, r, fields)
}

// openapiValidationResponse reports request errors found by the OpenAPI filter.
func (app *Application) openapiValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var fields []api.ValidationError

	var multiErr openapi3.MultiError
	if errors.As(err, &multiErr) {
		for _, e := range multiErr {
			fields = append(fields, toValidationError(e))
		}
	} else {
		fields = append(fields, toValidationError(err))
	}

	app.validationErrorResponse(w, r, fields)
}

func (app *Application) validationErrorResponse(w http.ResponseWriter, r *http.Request, fields []api.ValidationError) {
	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: fields,
	}

	err := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func toValidationError(err error) api.ValidationError {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return api.ValidationError{Field: "request", Issue: err.Error()}
	}

	field := "body"
	if reqErr.Parameter != nil {
		field = reqErr.Parameter.Name
	}

	issue := reqErr.Reason
	if issue == "" && reqErr.Err != nil {
		issue = reqErr.Err.Error()
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(reqErr.Err, &schemaErr) {
		issue = schemaErr.Reason
		if path := schemaErr.JSONPointer(); len(path) > 0 {
			field = strings.Join(path, ".")
		}
	}

	return api.ValidationError{Field: field, Issue: issue}
}

// jsonFieldName lower-cases the first letter of a struct field name so it matches
// the JSON contract.
func jsonFieldName(name string) string {
	if name == "" {
		return name
	}

	return strings.ToLower(name[:1]) + name[1:]
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/healthz"
}
