package model

import "errors"

// Error kinds surfaced by the core. Operations wrap these with detail via
// fmt.Errorf("%w: ..."); callers classify with errors.Is. Every operation is
// all-or-nothing: a returned error means no state changed.
var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrCapExceeded         = errors.New("cap exceeded")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrProofInvalid        = errors.New("proof invalid")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadyCommitted    = errors.New("already committed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransferFailed      = errors.New("transfer failed")
)
