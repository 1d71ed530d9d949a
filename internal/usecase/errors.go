package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidReference      = errors.New("invalid reference")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
