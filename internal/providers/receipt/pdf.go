package receipt

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) Render(ctx context.Context, data Data) (io.Reader, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.RestaurantName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Comanda "+data.TabNumber, props.Text{Style: fontstyle.Bold}),
			text.New("Data: "+data.Date, props.Text{Top: 5, Size: 9}),
		),
		col.New(6).Add(
			text.New("Pagamento: "+data.Method, props.Text{Top: 5, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qtd", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Preço", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Subtotal", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(7,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Price, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Subtotal, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if data.Tendered != "" {
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, "Recebido", props.Text{Size: 9}),
			text.NewCol(2, data.Tendered, props.Text{Size: 9, Align: align.Right}),
		)
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, "Troco", props.Text{Size: 9}),
			text.NewCol(2, data.Change, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
