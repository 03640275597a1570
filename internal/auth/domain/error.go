package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserExists         = errors.New("user_exists")
	ErrUserNotFound       = errors.New("user_not_found")
	// ErrAuthExpired means the presented token is missing, unknown, or past
	// its expiry; clients respond with one refresh attempt.
	ErrAuthExpired  = errors.New("auth_expired")
	ErrNoRestaurant = errors.New("user_not_bound_to_restaurant")
)
