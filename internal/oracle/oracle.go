// Package oracle provides the reply-producing services a sweep probes:
// the Anthropic Messages API, Google Gemini and a gRPC inference service.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// #region interface

// Oracle produces a reply for a prompt. Implementations return
// *TransportError for any failure to obtain a reply.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Oracle. Errors it returns are wrapped as
// *TransportError with backend "func".
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	reply, err := f(ctx, prompt)
	if err != nil {
		return "", Wrap("func", err)
	}
	return reply, nil
}

// #endregion

// #region transport-error

// TransportError reports that the oracle could not be reached or failed.
type TransportError struct {
	Backend string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Backend, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *TransportError unless it already is one.
func Wrap(backend string, err error) error {
	if err == nil {
		return nil
	}
	var terr *TransportError
	if errors.As(err, &terr) {
		return err
	}
	return &TransportError{Backend: backend, Err: err}
}

// #endregion
