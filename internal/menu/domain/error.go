package domain

import "errors"

var (
	// ErrMenuItemUnavailable covers both a disabled item and an item that
	// belongs to another restaurant; the caller cannot tell them apart.
	ErrMenuItemUnavailable = errors.New("menu_item_unavailable")
	ErrInvalidRestaurant   = errors.New("invalid_restaurant")
)
