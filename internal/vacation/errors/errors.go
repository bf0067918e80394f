// Package errors holds the error kinds returned by the vacation ledger engine.
// Callers match them with errors.Is; context (record id, field) is added by
// wrapping with %w.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation              = fmt.Errorf("validation error")
	ErrInvalidDateFormat       = fmt.Errorf("invalid date format, use YYYY/MM/DD")
	ErrInvalidEmployeeNumber   = fmt.Errorf("employee number must be a number with at most 3 digits")
	ErrDuplicateEmployeeNumber = fmt.Errorf("duplicate employee number")
	ErrOutOfRange              = fmt.Errorf("attachment index out of range")
	ErrEmptyAttachmentList     = fmt.Errorf("no attachments")
	ErrNotFound                = fmt.Errorf("record not found")

	// ErrStorageUnavailable and ErrMissingIdentityColumn block the caller:
	// there is no usable store to continue with.
	ErrStorageUnavailable    = fmt.Errorf("storage unavailable")
	ErrMissingIdentityColumn = fmt.Errorf("employees table exists but the id column is missing, consider resetting the database")
)

// IsFatal reports whether err leaves the caller without a usable store.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrMissingIdentityColumn)
}
