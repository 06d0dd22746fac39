package rest

import (
	"net/http"

	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/gin-gonic/gin"
)

type toggleLikeRequest struct {
	PieceID int64 `json:"piece_id" binding:"required,min=1"`
	// Direction is 1 (like, the default) or 0 (unlike).
	Direction *int `json:"direction" binding:"omitempty,oneof=0 1"`
}

func (r toggleLikeRequest) direction() models.LikeDirection {
	if r.Direction == nil {
		return models.DirectionLike
	}
	return models.LikeDirection(*r.Direction)
}

func (s *Server) toggleLike(c *gin.Context) {
	var req toggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	res, err := s.svc.Likes.Toggle(c.Request.Context(), identity(c), req.PieceID, req.direction())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) likeCount(c *gin.Context) {
	pieceID, err := parseID(c, "piece_id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	count, err := s.svc.Likes.Count(c.Request.Context(), pieceID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (s *Server) myLikes(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	list, err := s.svc.Likes.ListMine(c.Request.Context(), identity(c), q.Limit, q.Offset)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) pieceLikes(c *gin.Context) {
	pieceID, err := parseID(c, "piece_id")
	if err != nil {
		s.badRequest(c, err)
		return
	}

	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.badRequest(c, err)
		return
	}

	list, err := s.svc.Likes.ListForPiece(c.Request.Context(), pieceID, q.Limit, q.Offset)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
