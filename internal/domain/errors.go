package domain

import "errors"

var (
	ErrEmailNotFound    = errors.New("email not found")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrStoreUnavailable = errors.New("record store unavailable")
)
