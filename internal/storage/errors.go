package storage

import "errors"

var (
	// ErrSessionNotFound indicates no session exists under the requested id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidSession indicates a session that cannot be stored.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNotFound indicates no blob exists under the requested key.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey indicates a blob key that escapes the store root or is empty.
	ErrInvalidKey = errors.New("invalid blob key")
)
