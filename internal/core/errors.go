package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by the service and the stores wraps one of these.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	ErrEmptyName           = fmt.Errorf("%w: empty name", ErrInvalidArgument)
	ErrEmptyDescription    = fmt.Errorf("%w: empty description", ErrInvalidArgument)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be a positive number", ErrInvalidArgument)
	ErrInvalidType         = fmt.Errorf("%w: type must be income or expense", ErrInvalidArgument)
	ErrInvalidDate         = fmt.Errorf("%w: invalid date", ErrInvalidArgument)
	ErrEmptyID             = fmt.Errorf("%w: empty id", ErrInvalidArgument)
	ErrDuplicateCategory   = fmt.Errorf("%w: category already exists", ErrConflict)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
)

// Unavailable wraps a persistence failure so callers can match ErrStoreUnavailable
// while the original cause stays reachable through errors.Is/As.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
