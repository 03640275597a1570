package domain

import "errors"

var (
	ErrTabAlreadyClosed    = errors.New("tab_already_closed")
	ErrInsufficientPayment = errors.New("insufficient_payment")
	ErrInvalidMethod       = errors.New("invalid_payment_method")
	ErrPaymentNotFound     = errors.New("payment_not_found")
	ErrInvalidRestaurant   = errors.New("invalid_restaurant")
)
