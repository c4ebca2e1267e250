package service

import (
	"errors"
	"fmt"

	"storefront-service/internal/store"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidSlot      = errors.New("cart slot out of range")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCartConflict     = errors.New("cart write conflict")
	ErrUnknownEmail     = errors.New("unknown email")
	ErrWrongPassword    = errors.New("wrong password")
	ErrOrderInProgress  = errors.New("order with this idempotency key is in progress")
)

// storeErr passes store sentinels through and folds everything else into ErrStoreUnavailable.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateID):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
}

func validationErr(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
