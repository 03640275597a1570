package receipt

import (
	"context"
	"io"
)

// Data carries everything the renderer needs, already formatted. Keeping the
// provider presentation-only means the handler owns rounding and currency.
type Data struct {
	RestaurantName string
	TabNumber      string
	Date           string
	Method         string

	Items []Item

	Total    string
	Tendered string
	Change   string
}

type Item struct {
	Name     string
	Quantity string
	Price    string
	Subtotal string
}

type Provider interface {
	Render(ctx context.Context, data Data) (io.Reader, error)
}
