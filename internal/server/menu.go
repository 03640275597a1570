package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/comanda/internal/auth/domain"
)

// ListMenuItems returns the restaurant's orderable items, alphabetically.
// Unavailable items are filtered out server-side so terminals never offer
// something the kitchen cannot make.
func (s *Server) ListMenuItems(c *gin.Context) {
	items, err := s.menuSvc.ListAvailable(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu_items": items})
}

// UserProfile tells a terminal who it is logged in as and which restaurant
// every subsequent call will be scoped to.
func (s *Server) UserProfile(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, authdomain.ErrAuthExpired)
		return
	}

	restaurant, err := s.menuSvc.Restaurant(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         identity.UserID,
		"role":            identity.Role,
		"restaurant_id":   restaurant.ID,
		"restaurant_name": restaurant.Name,
	})
}
