package sim

import (
	"errors"
	"fmt"
)

// ErrEmptyServers is returned when a RunConfig has no servers.
var ErrEmptyServers = errors.New("servers must not be empty")

// ErrRequestsZero is returned when a RunConfig asks for zero requests.
var ErrRequestsZero = errors.New("requests must be greater than 0")

// DuplicateServerIDError names a server id that appears more than once.
type DuplicateServerIDError struct {
	ID int
}

func (e *DuplicateServerIDError) Error() string {
	return fmt.Sprintf("duplicate server id %d", e.ID)
}

// InvalidServerError reports a server whose latency or weight is not positive,
// or is so large that tick arithmetic on it would overflow int64.
type InvalidServerError struct {
	ID     int
	Field  string
	Value  int64
	Reason string // empty means "must be > 0"
}

func (e *InvalidServerError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "must be > 0"
	}
	return fmt.Sprintf("server %d: %s %s, got %d", e.ID, e.Field, reason, e.Value)
}
