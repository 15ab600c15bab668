package domain

import "errors"

var (
	ErrEmptyQuery     = errors.New("please enter a search term")
	ErrInvalidPage    = errors.New("page must be a positive integer")
	ErrUpstreamStatus = errors.New("movie provider returned an unexpected status")
	ErrSessionClosed  = errors.New("search session is closed")
)
