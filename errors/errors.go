package errors

import "fmt"

var (
	ErrNotFound            = fmt.Errorf("participant is not tracked by the ledger")
	ErrInvalidAmount       = fmt.Errorf("amount must be a positive integer")
	ErrAlreadyDisconnected = fmt.Errorf("participant already disconnected")
	ErrNameRejected        = fmt.Errorf("display name rejected")
	ErrTokenGeneration     = fmt.Errorf("unable to generate session token")
	ErrInvalidToken        = fmt.Errorf("invalid or expired session token")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrEmptyWords          = fmt.Errorf("no censored words loaded")
)
