package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/dbx"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/likes"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/repomanager"
)

// ToggleResult is the outcome of a like or unlike.
type ToggleResult struct {
	Message    string       `json:"message"`
	Like       *models.Like `json:"like,omitempty"`
	NumOfLikes int64        `json:"num_of_likes"`
}

// LikeService keeps the like relation and each piece's num_of_likes
// counter in step.
type LikeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLikeService(db *sql.DB, m repomanager.RepositoryManager) *LikeService {
	return &LikeService{db: db, repomanager: m}
}

func pieceDoesNotExist(id int64) error {
	return common.Detailed(common.ErrorNotFound, "Piece with id: %d does not exist", id)
}

// Toggle likes (DirectionLike) or unlikes (DirectionUnlike) pieceID for
// caller. The piece row is locked for the duration of the transaction, so
// concurrent toggles on one piece are serialized; the likes primary key
// rejects a duplicate insert that slips through anyway.
func (s *LikeService) Toggle(ctx context.Context, caller auth.Identity, pieceID int64, dir models.LikeDirection) (*ToggleResult, error) {
	if !dir.Valid() {
		return nil, common.Detailed(common.ErrorValidation, "direction must be either 0 (unlike) or 1 (like)")
	}

	var result *ToggleResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pieces := s.repomanager.Pieces(tx)
		likesRepo := s.repomanager.Likes(tx)

		if _, err := pieces.GetForUpdate(ctx, pieceID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return pieceDoesNotExist(pieceID)
			}
			return asInternal(err)
		}

		liked, err := likesRepo.Exists(ctx, caller.ID, pieceID)
		if err != nil {
			return asInternal(err)
		}

		if dir == models.DirectionLike {
			result, err = s.like(ctx, pieces, likesRepo, caller.ID, pieceID, liked)
		} else {
			result, err = s.unlike(ctx, pieces, likesRepo, caller.ID, pieceID, liked)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func alreadyLiked(userID, pieceID int64) error {
	return common.Detailed(common.ErrConflict, "User %d has already liked piece %d", userID, pieceID)
}

func (s *LikeService) like(ctx context.Context, pieces piecesCounter, likesRepo likes.Repository, userID, pieceID int64, liked bool) (*ToggleResult, error) {
	if liked {
		return nil, alreadyLiked(userID, pieceID)
	}

	if err := likesRepo.Create(ctx, userID, pieceID); err != nil {
		if errors.Is(err, likes.ErrAlreadyLiked) {
			return nil, alreadyLiked(userID, pieceID)
		}
		return nil, asInternal(err)
	}

	n, err := pieces.IncrementLikes(ctx, pieceID)
	if err != nil {
		return nil, asInternal(err)
	}

	return &ToggleResult{
		Message:    "Successfully added like",
		Like:       &models.Like{UserID: userID, PieceID: pieceID},
		NumOfLikes: n,
	}, nil
}

func (s *LikeService) unlike(ctx context.Context, pieces piecesCounter, likesRepo likes.Repository, userID, pieceID int64, liked bool) (*ToggleResult, error) {
	if !liked {
		return nil, common.Detailed(common.ErrorNotFound, "Like does not exist")
	}

	removed, err := likesRepo.Delete(ctx, userID, pieceID)
	if err != nil {
		return nil, asInternal(err)
	}
	if !removed {
		return nil, common.Detailed(common.ErrorNotFound, "Like does not exist")
	}

	n, err := pieces.DecrementLikes(ctx, pieceID)
	if err != nil {
		return nil, asInternal(err)
	}

	return &ToggleResult{Message: "Successfully removed like", NumOfLikes: n}, nil
}

// piecesCounter is the part of pieces.Repository the toggle needs.
type piecesCounter interface {
	IncrementLikes(ctx context.Context, id int64) (int64, error)
	DecrementLikes(ctx context.Context, id int64) (int64, error)
}

func (s *LikeService) requirePiece(ctx context.Context, pieceID int64) error {
	if _, err := s.repomanager.Pieces(s.db).GetByID(ctx, pieceID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return pieceDoesNotExist(pieceID)
		}
		return asInternal(err)
	}
	return nil
}

// Count returns the live number of like rows for pieceID.
func (s *LikeService) Count(ctx context.Context, pieceID int64) (*models.LikeCount, error) {
	if err := s.requirePiece(ctx, pieceID); err != nil {
		return nil, err
	}

	n, err := s.repomanager.Likes(s.db).CountForPiece(ctx, pieceID)
	if err != nil {
		return nil, asInternal(err)
	}
	return &models.LikeCount{PieceID: pieceID, LikeCount: n}, nil
}

func (s *LikeService) ListMine(ctx context.Context, caller auth.Identity, limit, offset int) ([]models.Like, error) {
	limit, offset = common.ClampPage(limit, offset)
	list, err := s.repomanager.Likes(s.db).ListByUser(ctx, caller.ID, limit, offset)
	if err != nil {
		return nil, asInternal(err)
	}
	return list, nil
}

func (s *LikeService) ListForPiece(ctx context.Context, pieceID int64, limit, offset int) ([]models.Like, error) {
	if err := s.requirePiece(ctx, pieceID); err != nil {
		return nil, err
	}

	limit, offset = common.ClampPage(limit, offset)
	list, err := s.repomanager.Likes(s.db).ListByPiece(ctx, pieceID, limit, offset)
	if err != nil {
		return nil, asInternal(err)
	}
	return list, nil
}
