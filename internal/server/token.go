package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" form:"refresh"`
}

// Token exchanges a username and password for an access/refresh pair. The
// terminal apps post form-encoded bodies; JSON is accepted too.
func (s *Server) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Username == "" {
		AbortWithError(c, newValidationError("username", "required", "username is required"))
		return
	}
	if req.Password == "" {
		AbortWithError(c, newValidationError("password", "required", "password is required"))
		return
	}

	pair, err := s.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// TokenRefresh trades a live refresh token for a fresh access token. The
// refresh token itself stays valid until its own expiry.
func (s *Server) TokenRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Refresh == "" {
		AbortWithError(c, newValidationError("refresh", "required", "refresh token is required"))
		return
	}

	access, err := s.authSvc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}
