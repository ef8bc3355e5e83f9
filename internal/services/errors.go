package services

import "errors"

var (
	// ErrCartNotFound: the cart id does not resolve.
	ErrCartNotFound = errors.New("cart not found")
	// ErrPackageNotFound: the package id does not resolve.
	ErrPackageNotFound = errors.New("package not found")
	// ErrCartCompleted: the cart is sealed; package mutations are rejected.
	ErrCartCompleted = errors.New("cart already completed")
	// ErrInvalidQuantity: package quantity must be positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrOperatorExists: registration with a name already taken.
	ErrOperatorExists = errors.New("operator name already in use")
	// ErrInvalidCredentials: login with unknown name or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
