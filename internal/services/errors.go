package services

import "errors"

// ErrInvalidInput marks a request the survey service cannot serve as asked.
var ErrInvalidInput = errors.New("invalid input")
