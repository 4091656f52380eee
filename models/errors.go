package models

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrInvalidToken    = errors.New("token is invalid or expired")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
)

// FieldError describes one rejected input value. Loc is the path to the
// value, e.g. ["body", "title"] or ["query", "limit"].
type FieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error and returns the receiver for chaining.
func (e *ValidationError) Add(msg string, loc ...string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Loc: loc, Msg: msg})
	return e
}
