package services

import "errors"

// Recoverable operation rejections. Every economy operation is
// all-or-nothing: when one of these comes back, no state changed.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("operation not valid for current state")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount outside accepted set")
	ErrAlreadyActive       = errors.New("already active")
	ErrCapExceeded         = errors.New("boost cap exceeded")
	ErrNegativeBalance     = errors.New("adjustment would drive balance negative")
)
