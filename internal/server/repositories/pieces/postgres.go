package pieces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/dbx"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
)

const pieceColumns = `id, title, COALESCE(description, ''), num_of_likes, created_at`

var likePattern = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPiece(s scanner) (*models.Piece, error) {
	p := &models.Piece{}
	if err := s.Scan(&p.ID, &p.Title, &p.Description, &p.NumOfLikes, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Piece, error) {
	p, err := scanPiece(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, piece *models.Piece) (*models.Piece, error) {
	query :=
		`INSERT INTO pieces (title, description)
		 VALUES ($1, $2)
		 RETURNING id, num_of_likes, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, piece.Title, piece.Description).
		Scan(&piece.ID, &piece.NumOfLikes, &piece.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return piece, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Piece, error) {
	return r.getOne(ctx, `SELECT `+pieceColumns+` FROM pieces WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Piece, error) {
	return r.getOne(ctx, `SELECT `+pieceColumns+` FROM pieces WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Piece, error) {
	query :=
		`SELECT ` + pieceColumns + ` FROM pieces
		 WHERE title ILIKE '%' || $1 || '%'
		 ORDER BY id
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, likePattern.Replace(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Piece, 0, limit)
	for rows.Next() {
		p, err := scanPiece(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, u models.PieceUpdate) (*models.Piece, error) {
	if u.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if u.Title != nil {
		args = append(args, *u.Title)
		sets = append(sets, "title = $"+strconv.Itoa(len(args)))
	}
	if u.Description != nil {
		args = append(args, *u.Description)
		sets = append(sets, "description = $"+strconv.Itoa(len(args)))
	}
	args = append(args, id)

	query := `UPDATE pieces SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + pieceColumns

	return r.getOne(ctx, query, args...)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pieces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) IncrementLikes(ctx context.Context, id int64) (int64, error) {
	query :=
		`UPDATE pieces SET num_of_likes = num_of_likes + 1
		 WHERE id = $1
		 RETURNING num_of_likes
		 `

	var n int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DecrementLikes(ctx context.Context, id int64) (int64, error) {
	query :=
		`UPDATE pieces SET num_of_likes = num_of_likes - 1
		 WHERE id = $1 AND num_of_likes > 0
		 RETURNING num_of_likes
		 `

	var n int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		// Counter already at zero.
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
