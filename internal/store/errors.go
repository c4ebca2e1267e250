package store

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateID     = errors.New("identifier already in use")
)
