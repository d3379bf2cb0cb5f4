package processes

import "errors"

var (
	ErrNotFound     = errors.New("process not found")
	ErrInvalidInput = errors.New("invalid input")
)
