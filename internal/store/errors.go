package store

import "errors"

var ErrNotFound = errors.New("book not found")

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
