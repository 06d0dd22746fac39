package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// loginRequest accepts both an OAuth2-style form and a JSON body.
type loginRequest struct {
	UserName string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	tok, err := s.svc.Auth.Login(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tok)
}
