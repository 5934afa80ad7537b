package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Callers branch on it
// with errors.Is instead of inspecting driver errors.
var ErrNotFound = errors.New("record not found")
