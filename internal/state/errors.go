package state

import (
	"errors"

	"github.com/five82/wreath/internal/memorial"
)

var (
	// ErrEmptyContent is returned when a flower message is blank after trimming.
	ErrEmptyContent = errors.New("message is empty")
	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store closed")
)

// FetchError records a refresh that exhausted its attempts.
type FetchError struct {
	Variant  memorial.Variant
	Code     int
	Message  string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func cloneError(err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		dup := *fe
		return &dup
	}
	return err
}
