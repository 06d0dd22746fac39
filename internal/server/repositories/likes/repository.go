package likes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
)

// ErrAlreadyLiked is returned by Create when the (user, piece) row exists.
var ErrAlreadyLiked = fmt.Errorf("%w: already liked", common.ErrConflict)

type Repository interface {
	Create(ctx context.Context, userID, pieceID int64) error
	// Delete removes the row and reports whether one existed.
	Delete(ctx context.Context, userID, pieceID int64) (bool, error)
	Exists(ctx context.Context, userID, pieceID int64) (bool, error)
	CountForPiece(ctx context.Context, pieceID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Like, error)
	ListByPiece(ctx context.Context, pieceID int64, limit, offset int) ([]models.Like, error)
}
