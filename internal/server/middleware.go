package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/comanda/internal/auth/domain"
	"github.com/smallbiznis/comanda/internal/restaurantctx"
)

const (
	contextIdentityKey = "identity"
)

// AuthRequired resolves the bearer token to exactly one restaurant before any
// domain call runs. Everything downstream reads the restaurant from the
// request context, never from the request payload.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, authdomain.ErrAuthExpired)
			return
		}

		identity, err := s.authSvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextIdentityKey, identity)
		ctx := restaurantctx.WithRestaurantID(c.Request.Context(), identity.RestaurantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func identityFrom(c *gin.Context) (authdomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return authdomain.Identity{}, false
	}
	identity, ok := value.(authdomain.Identity)
	return identity, ok
}
