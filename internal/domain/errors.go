package domain

import "errors"

var (
	// ErrFetch is returned when the question bank is unreachable or returned no usable questions.
	ErrFetch = errors.New("no questions available")
	// ErrNoActiveSession is returned when a user acts without a running quiz.
	ErrNoActiveSession = errors.New("no active quiz session")
	// ErrIncompleteSession signals an attempt to score a quiz before every question was answered.
	ErrIncompleteSession = errors.New("quiz session is not complete")
	// ErrStaleAnswer is returned when an answer targets a question that is no longer awaiting one.
	ErrStaleAnswer = errors.New("question already answered")
	// ErrValidation marks malformed input from a client.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence indicates the score store could not be reached.
	ErrPersistence = errors.New("score store unavailable")
	// ErrQuestionNotFound is returned when a catalog id does not exist.
	ErrQuestionNotFound = errors.New("question not found")
)
