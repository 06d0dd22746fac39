package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/repomanager"
)

// PieceService serves the catalogue of pieces. Reads are public, writes are
// admin-only.
type PieceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPieceService(db *sql.DB, m repomanager.RepositoryManager) *PieceService {
	return &PieceService{db: db, repomanager: m}
}

func pieceNotFound(id int64) error {
	return common.Detailed(common.ErrorNotFound, "Piece with id %d was not found", id)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return common.Detailed(common.ErrorValidation, "title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return common.Detailed(common.ErrorValidation, "title must be at most %d characters", models.MaxTitleLength)
	}
	return nil
}

func (s *PieceService) List(ctx context.Context, search string, limit, offset int) ([]*models.Piece, error) {
	limit, offset = common.ClampPage(limit, offset)
	list, err := s.repomanager.Pieces(s.db).List(ctx, search, limit, offset)
	if err != nil {
		return nil, asInternal(err)
	}
	return list, nil
}

func (s *PieceService) Get(ctx context.Context, id int64) (*models.Piece, error) {
	p, err := s.repomanager.Pieces(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, pieceNotFound(id)
		}
		return nil, asInternal(err)
	}
	return p, nil
}

func (s *PieceService) Create(ctx context.Context, caller auth.Identity, title, description string) (*models.Piece, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	p, err := s.repomanager.Pieces(s.db).Create(ctx, &models.Piece{Title: title, Description: description})
	if err != nil {
		return nil, asInternal(err)
	}
	return p, nil
}

func (s *PieceService) Update(ctx context.Context, caller auth.Identity, id int64, u models.PieceUpdate) (*models.Piece, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if u.Title != nil {
		if err := validateTitle(*u.Title); err != nil {
			return nil, err
		}
	}

	p, err := s.repomanager.Pieces(s.db).Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, pieceNotFound(id)
		}
		return nil, asInternal(err)
	}
	return p, nil
}

func (s *PieceService) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}

	if err := s.repomanager.Pieces(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return pieceNotFound(id)
		}
		return asInternal(err)
	}
	return nil
}
