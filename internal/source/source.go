// Package source loads the pantry collection from its remote origin.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/pantry-finder/internal/models"
)

var (
	ErrTransport = errors.New("pantry source transport failure")
	ErrDecode    = errors.New("pantry source decode failure")
)

// Source fetches the complete pantry collection. Each call is a single attempt with
// no retry. An empty, non-nil slice is a successful result.
type Source interface {
	Fetch(ctx context.Context) ([]models.Pantry, error)
}

// ErrorKind classifies a FetchError.
type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError is the only error type returned by Source implementations in this module.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

// TransportError wraps a connectivity or non-success status failure.
func TransportError(err error) *FetchError {
	return &FetchError{Kind: KindTransport, Err: err}
}

// DecodeError wraps a malformed payload failure.
func DecodeError(err error) *FetchError {
	return &FetchError{Kind: KindDecode, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch pantries (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport and ErrDecode by kind.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// Func adapts an ordinary function to the Source interface.
type Func func(ctx context.Context) ([]models.Pantry, error)

// Fetch calls f(ctx).
func (f Func) Fetch(ctx context.Context) ([]models.Pantry, error) {
	return f(ctx)
}
