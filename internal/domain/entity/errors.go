package entity

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound: цепочка селекторов исчерпана без видимого совпадения.
	ErrNotFound = errors.New("not found")
	// ErrTimeout: ограниченное ожидание истекло.
	ErrTimeout = errors.New("timeout")
	// ErrValidationBlocked: площадка сообщила об ошибке обязательного поля.
	ErrValidationBlocked = errors.New("validation blocked")
	ErrEmptyChain        = errors.New("empty selector chain")
)

// InteractionError wraps a failed click, fill or upload.
type InteractionError struct {
	Op       string
	Selector string
	Err      error
}

func (e *InteractionError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Selector, e.Err)
}

func (e *InteractionError) Unwrap() error { return e.Err }

func NewInteractionError(op, selector string, err error) error {
	return &InteractionError{Op: op, Selector: selector, Err: err}
}

// ProcessFatalError means the interactive session could not be acquired; the run must stop.
type ProcessFatalError struct {
	Err error
}

func (e *ProcessFatalError) Error() string { return "fatal: " + e.Err.Error() }

func (e *ProcessFatalError) Unwrap() error { return e.Err }

func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &ProcessFatalError{Err: err}
}

func IsFatal(err error) bool {
	var fatal *ProcessFatalError
	return errors.As(err, &fatal)
}

func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
