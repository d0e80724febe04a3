package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches every *FetchError via errors.Is.
	ErrFetch = errors.New("catalog fetch failed")
	// ErrSuperseded is returned by a Load whose result was discarded because
	// a newer Load (or Reset) started before it completed.
	ErrSuperseded = errors.New("catalog load superseded")
)

// FetchError reports a failed Load. The previously held catalog is kept.
type FetchError struct {
	UserID int64
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load catalog for user %d: %v", e.UserID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes every *FetchError match ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// RemoteError is a non-2xx answer from the catalog API.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: API returned status code %d", e.Op, e.StatusCode)
}
