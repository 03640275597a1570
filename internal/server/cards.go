package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type addItemRequest struct {
	MenuItemID snowflake.ID    `json:"menu_item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type readyRequest struct {
	Ready *bool `json:"ready"`
}

// pathID parses a snowflake route parameter. A malformed ID reads the same as
// a missing record so callers cannot probe identifier formats.
func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}

// ListCards returns every active tab with lines and totals. Terminals poll
// this endpoint, so it is a single read with no side effects.
func (s *Server) ListCards(c *gin.Context) {
	tabs, err := s.tabStore.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": tabs})
}

// OpenCard opens a fresh tab and returns it with its assigned number.
func (s *Server) OpenCard(c *gin.Context) {
	tab, err := s.tabStore.Open(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tab)
}

func (s *Server) GetCard(c *gin.Context) {
	tabID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.tabStore.Get(c.Request.Context(), tabID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// AddCardItem appends one line to an open tab, capturing the menu price and
// debiting stock in the same transaction.
func (s *Server) AddCardItem(c *gin.Context) {
	tabID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.MenuItemID == 0 {
		AbortWithError(c, newValidationError("menu_item_id", "required", "menu_item_id is required"))
		return
	}

	line, err := s.tabStore.AddLine(c.Request.Context(), tabID, req.MenuItemID, req.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, line)
}

// DeleteCardItem removes a line and credits its quantity back to stock.
func (s *Server) DeleteCardItem(c *gin.Context) {
	tabID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	lineID, err := pathID(c, "item_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.tabStore.RemoveLine(c.Request.Context(), tabID, lineID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetCardItemReady flags a line as served (or not). Kitchen displays use it;
// it never touches stock or totals.
func (s *Server) SetCardItemReady(c *gin.Context) {
	tabID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	lineID, err := pathID(c, "item_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req readyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	ready := true
	if req.Ready != nil {
		ready = *req.Ready
	}

	if err := s.tabStore.SetLineReady(c.Request.Context(), tabID, lineID, ready); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
