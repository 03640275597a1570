package domain

import "errors"

var (
	ErrTabNotFound       = errors.New("tab_not_found")
	ErrTabClosed         = errors.New("tab_closed")
	ErrLineNotFound      = errors.New("line_not_found")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidRestaurant = errors.New("invalid_restaurant")
)
