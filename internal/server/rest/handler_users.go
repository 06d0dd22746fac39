package rest

import (
	"net/http"

	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	UserName string `json:"username" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
}

func (r createUserRequest) toModel() models.NewUser {
	return models.NewUser{UserName: r.UserName, Email: r.Email, Password: r.Password}
}

type updateUserRequest struct {
	UserName *string      `json:"username" binding:"omitempty,min=1,max=255"`
	Email    *string      `json:"email" binding:"omitempty,email,max=255"`
	Password *string      `json:"password" binding:"omitempty,min=1"`
	Role     *models.Role `json:"role" binding:"omitempty,oneof=admin user"`
}

func (s *Server) listUsers(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	list, err := s.svc.Users.List(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	u, err := s.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) registerUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	u, err := s.svc.Users.Register(c.Request.Context(), req.toModel())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) createAdmin(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	u, err := s.svc.Users.CreateAdmin(c.Request.Context(), identity(c), req.toModel())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	u, err := s.svc.Users.Update(c.Request.Context(), identity(c), id, models.UserUpdate{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	if err := s.svc.Users.Delete(c.Request.Context(), identity(c), id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
