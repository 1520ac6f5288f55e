package session

import "errors"

// Every error returned by a session operation wraps one of these.
// None of them leave the aggregate partially mutated.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
