package domain

import "errors"

var (
	// ErrValidation is returned for malformed input (empty names, bad PINs,
	// scores outside 0..total).
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateName is returned when a unique name constraint is violated.
	ErrDuplicateName = errors.New("name already exists")
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuiz is returned when starting a session against a set with no questions.
	ErrEmptyQuiz = errors.New("set has no questions")
	// ErrSessionNotFound is returned when a session token is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidState is returned when a session method is called out of sequence.
	ErrInvalidState = errors.New("invalid session state")
	// ErrAlreadyFinished is returned on a second finish of the same session.
	ErrAlreadyFinished = errors.New("session already finished")
	// ErrStore wraps any data-access failure.
	ErrStore = errors.New("store failure")
)
