package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccount is returned when a user has no economy row
	ErrNoAccount = errors.New("no account")

	// ErrPrefixInUse is returned when adding a prefix the guild already has
	ErrPrefixInUse = errors.New("prefix already in use")

	// ErrPrefixNotFound is returned when removing a prefix the guild does not have
	ErrPrefixNotFound = errors.New("prefix not found")

	// ErrInvalidPrefix is returned for blank or oversized prefixes
	ErrInvalidPrefix = errors.New("invalid prefix")
)

// AlreadyHasAccountError is returned when opening an account that is already open
type AlreadyHasAccountError struct {
	Bank int64
}

func (e *AlreadyHasAccountError) Error() string {
	return fmt.Sprintf("account already open with %d in bank", e.Bank)
}

// InsufficientFundsError is returned when the wallet cannot cover the opening cost
type InsufficientFundsError struct {
	Shortfall int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %d more needed", e.Shortfall)
}
