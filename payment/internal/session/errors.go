package session

import "errors"

var (
	ErrSheetUnavailable     = errors.New("payment sheet unavailable")
	ErrInvalidTransition    = errors.New("invalid payment session transition")
	ErrNoPaymentInProgress  = errors.New("no payment in progress")
	ErrAuthorizationPending = errors.New("payment authorization pending")
)
