// Package service implements the workflow operations. Every operation
// returns a Result or a typed apperror; raw errors never reach callers.
package service

import (
	"context"
	"fmt"

	"approvalflow/internal/apperror"
	"approvalflow/internal/concurrency"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of a mutating operation.
type Result struct {
	Status    string        `json:"status"`
	Message   string        `json:"message"`
	Kind      apperror.Kind `json:"kind,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func succeeded(message, requestID string) Result {
	return Result{Status: StatusSuccess, Message: message, RequestID: requestID}
}

func failed(err error) Result {
	return Result{Status: StatusError, Message: apperror.Message(err), Kind: apperror.KindOf(err)}
}

// locked runs fn while holding the global mutation lock. Once the lock is
// held, fn runs to completion regardless of ctx cancellation. A panic in fn
// is reported as OperationFailed and the lock is always released.
func locked(ctx context.Context, guard concurrency.Guard, fn func(ctx context.Context) error) (err error) {
	release, err := guard.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	defer func() {
		if r := recover(); r != nil {
			err = apperror.Failed(fmt.Errorf("panic: %v", r), "unexpected failure")
		}
	}()
	return fn(context.WithoutCancel(ctx))
}

// classify wraps unclassified errors so that every error leaving the
// service carries a kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Failed(err, "operation failed")
}
