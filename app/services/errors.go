package services

import "errors"

// Sentinel errors returned by services. Controllers map them to HTTP codes;
// everything else surfaces as a 500.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrNotOwner           = errors.New("resource belongs to another user")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrGateway            = errors.New("payment gateway error")
)
