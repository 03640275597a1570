package domain

import "context"

type Service interface {
	Restaurant(ctx context.Context) (Restaurant, error)
	ListAvailable(ctx context.Context) ([]MenuItem, error)
}
