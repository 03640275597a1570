package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/comanda/internal/auth/domain"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	paymentdomain "github.com/smallbiznis/comanda/internal/payment/domain"
	tabdomain "github.com/smallbiznis/comanda/internal/tab/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrCloseInProgress = errors.New("close_in_progress")
	ErrInternal        = errors.New("internal_error")
)

// ErrorHandlingMiddleware renders the last collected error once the handler
// chain is done, so every handler only records errors and returns.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError keeps tenant isolation airtight: anything the caller must not see
// (another restaurant's tab, line, or payment) comes back as a plain 404.
func mapError(err error) (int, errorPayload) {
	var validation ValidationErrors
	if errors.As(err, &validation) {
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "validation error",
			Errors:  validation.Errors,
		}
	}

	switch {
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{Type: "invalid_credentials", Message: "invalid username or password"}
	case errors.Is(err, authdomain.ErrAuthExpired),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Type: "auth_expired", Message: "credential expired or invalid"}
	case errors.Is(err, authdomain.ErrNoRestaurant):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "user is not bound to a restaurant"}

	case errors.Is(err, tabdomain.ErrTabNotFound),
		errors.Is(err, tabdomain.ErrLineNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, menudomain.ErrMenuItemUnavailable),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "resource not found"}

	case errors.Is(err, tabdomain.ErrTabClosed):
		return http.StatusConflict, errorPayload{Type: "tab_closed", Message: "tab is closed"}
	case errors.Is(err, paymentdomain.ErrTabAlreadyClosed):
		return http.StatusConflict, errorPayload{Type: "tab_already_closed", Message: "tab has already been paid"}
	case errors.Is(err, ErrCloseInProgress):
		return http.StatusConflict, errorPayload{Type: "close_in_progress", Message: "another close is in progress"}

	case errors.Is(err, tabdomain.ErrInvalidQuantity):
		return http.StatusBadRequest, errorPayload{Type: "invalid_quantity", Message: "quantity must be positive"}
	case errors.Is(err, paymentdomain.ErrInvalidMethod):
		return http.StatusBadRequest, errorPayload{Type: "invalid_payment_method", Message: "unknown or disabled payment method"}
	case errors.Is(err, paymentdomain.ErrInsufficientPayment):
		return http.StatusBadRequest, errorPayload{Type: "insufficient_payment", Message: "tendered amount is below the tab total"}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: "malformed request"}
	}

	return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal error"}
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func newValidationError(field, code, message string) error {
	return ValidationErrors{Errors: []ValidationError{{Field: field, Code: code, Message: message}}}
}
