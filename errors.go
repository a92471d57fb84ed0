package dectree

import "github.com/cockroachdb/errors"

var (
	ErrNoTree        = errors.New("model has no tree")
	ErrUnknownFormat = errors.New("unknown model format")
)
