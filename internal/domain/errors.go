package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no saved session exists for an id.
	ErrSessionNotFound = errors.New("exam session not found")
	// ErrSessionFinalized is returned when a mutation targets a completed or abandoned session.
	ErrSessionFinalized = errors.New("exam session already finalized")
	// ErrQuestionSetNotFound indicates the question list could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrPositionOutOfRange indicates a question position outside the supplied list.
	ErrPositionOutOfRange = errors.New("question position out of range")
	// ErrRecoveryNotFound is returned when no recovery snapshot exists for an id.
	ErrRecoveryNotFound = errors.New("recovery snapshot not found")
	// ErrRecoveryExpired is returned when a snapshot is older than the allowed age.
	ErrRecoveryExpired = errors.New("recovery snapshot expired")
	// ErrUnrecoverable indicates integrity validation found issues that cannot be auto-repaired.
	ErrUnrecoverable = errors.New("session has unrecoverable integrity issues")
)
