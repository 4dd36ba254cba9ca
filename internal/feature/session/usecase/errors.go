package usecase

import "errors"

// ErrSessionNotFound is returned when no session record exists for a user id.
var ErrSessionNotFound = errors.New("session not found")
