package domain

import "errors"

var (
	// ErrDeckNotFound is returned when no deck matches an access code.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrQuestionNotFound indicates a referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEventNotFound indicates a referenced event has no questions at all.
	ErrEventNotFound = errors.New("event not found")
	// ErrAccessCodeCollision is reported by deck stores when a generated
	// access code is already taken; callers retry with a fresh code.
	ErrAccessCodeCollision = errors.New("access code already in use")
	// ErrCodeSpaceExhausted is returned after the collision retry budget runs out.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique access code")
	// ErrInvalidFeedback indicates a feedback kind outside like/dislike.
	ErrInvalidFeedback = errors.New("invalid feedback kind")
)
