package pieces

import (
	"context"

	"github.com/dmitrijs2005/novelnest/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, piece *models.Piece) (*models.Piece, error)
	GetByID(ctx context.Context, id int64) (*models.Piece, error)
	// GetForUpdate reads the piece and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Piece, error)
	// List returns pieces whose title contains search (case-insensitive).
	// An empty search matches everything.
	List(ctx context.Context, search string, limit, offset int) ([]*models.Piece, error)
	Update(ctx context.Context, id int64, u models.PieceUpdate) (*models.Piece, error)
	Delete(ctx context.Context, id int64) error
	IncrementLikes(ctx context.Context, id int64) (int64, error)
	// DecrementLikes lowers the counter by one but never below zero and
	// returns the resulting value.
	DecrementLikes(ctx context.Context, id int64) (int64, error)
}
