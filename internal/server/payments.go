package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/comanda/internal/payment/domain"
	"github.com/smallbiznis/comanda/internal/providers/receipt"
	"go.uber.org/zap"
)

const closeLockTTL = 10 * time.Second

type createPaymentRequest struct {
	CardID   snowflake.ID     `json:"card_id"`
	Method   string           `json:"payment_method"`
	Tendered *decimal.Decimal `json:"paid_amount"`
	Notes    string           `json:"notes"`
}

// CreateCardPayment closes a tab. The optional redis lock sheds duplicate
// submits early; on contention or with no redis the conditional update inside
// the processor still guarantees at most one payment per tab.
func (s *Server) CreateCardPayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.CardID == 0 {
		AbortWithError(c, newValidationError("card_id", "required", "card_id is required"))
		return
	}
	if req.Method == "" {
		AbortWithError(c, newValidationError("payment_method", "required", "payment_method is required"))
		return
	}

	ctx := c.Request.Context()

	if s.locker.Enabled() {
		key := fmt.Sprintf("close:%d", req.CardID)
		token, acquired, err := s.locker.TryLock(ctx, key, closeLockTTL)
		if err != nil {
			s.log.Warn("close lock unavailable", zap.Error(err))
		} else if !acquired {
			AbortWithError(c, ErrCloseInProgress)
			return
		} else {
			defer func() {
				if err := s.locker.Release(c.Request.Context(), key, token); err != nil {
					s.log.Warn("close lock release failed", zap.Error(err))
				}
			}()
		}
	}

	payment, err := s.processor.Close(ctx, paymentdomain.CloseRequest{
		TabID:    req.CardID,
		Method:   req.Method,
		Tendered: req.Tendered,
		Notes:    req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// CardPaymentReceipt renders the PDF receipt for an already paid tab.
func (s *Server) CardPaymentReceipt(c *gin.Context) {
	tabID, err := pathID(c, "card_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	payment, err := s.processor.FindByTab(ctx, tabID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	detail, err := s.tabStore.Get(ctx, tabID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	restaurant, err := s.menuSvc.Restaurant(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := receipt.Data{
		RestaurantName: restaurant.Name,
		TabNumber:      fmt.Sprintf("%d", detail.Number),
		Date:           payment.CreatedAt.Format("02/01/2006 15:04"),
		Method:         payment.Method,
		Total:          payment.Amount.StringFixed(2),
	}
	if payment.Tendered != nil {
		data.Tendered = payment.Tendered.StringFixed(2)
	}
	if payment.Change != nil {
		data.Change = payment.Change.StringFixed(2)
	}
	for _, line := range detail.Lines {
		data.Items = append(data.Items, receipt.Item{
			Name:     line.ItemName,
			Quantity: line.Quantity.String(),
			Price:    line.Price.StringFixed(2),
			Subtotal: line.Subtotal().StringFixed(2),
		})
	}

	reader, err := s.receipts.Render(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=receipt-%d.pdf", detail.Number))
	c.Data(http.StatusOK, "application/pdf", body)
}
