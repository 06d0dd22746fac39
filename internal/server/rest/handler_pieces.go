package rest

import (
	"net/http"

	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/gin-gonic/gin"
)

type createPieceRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

type updatePieceRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}

type listPiecesQuery struct {
	pageQuery
	Search string `form:"search"`
}

func (s *Server) listPieces(c *gin.Context) {
	var q listPiecesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	list, err := s.svc.Pieces.List(c.Request.Context(), q.Search, q.Limit, q.Offset)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getPiece(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	p, err := s.svc.Pieces.Get(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createPiece(c *gin.Context) {
	var req createPieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	p, err := s.svc.Pieces.Create(c.Request.Context(), identity(c), req.Title, req.Description)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updatePiece(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	var req updatePieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	p, err := s.svc.Pieces.Update(c.Request.Context(), identity(c), id, models.PieceUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deletePiece(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	if err := s.svc.Pieces.Delete(c.Request.Context(), identity(c), id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
