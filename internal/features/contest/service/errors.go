package service

import "errors"

var (
	ErrNoActiveCycle     = errors.New("contest has no active cycle")
	ErrCycleNotReady     = errors.New("cycle is not ready for this operation")
	ErrAlreadyLocked     = errors.New("contest is already being processed")
	ErrMissingSourcePost = errors.New("cycle has no published source post")
	ErrInvalidPostLink   = errors.New("existing post link is not a valid wall post link")
)
