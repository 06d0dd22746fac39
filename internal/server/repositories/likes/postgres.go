package likes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/novelnest/internal/dbx"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
)

const constraintPrimaryKey = "likes_pkey"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, pieceID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO likes (user_id, piece_id) VALUES ($1, $2)`, userID, pieceID)
	if err != nil {
		if dbx.IsUniqueViolation(err, constraintPrimaryKey) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, pieceID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND piece_id = $2`, userID, pieceID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, pieceID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND piece_id = $2)`

	var found bool
	if err := r.db.QueryRowContext(ctx, query, userID, pieceID).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) CountForPiece(ctx context.Context, pieceID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE piece_id = $1`, pieceID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Like, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Like{}
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.UserID, &l.PieceID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Like, error) {
	query :=
		`SELECT user_id, piece_id FROM likes
		 WHERE user_id = $1
		 ORDER BY piece_id
		 LIMIT $2 OFFSET $3
		 `
	return r.list(ctx, query, userID, limit, offset)
}

func (r *PostgresRepository) ListByPiece(ctx context.Context, pieceID int64, limit, offset int) ([]models.Like, error) {
	query :=
		`SELECT user_id, piece_id FROM likes
		 WHERE piece_id = $1
		 ORDER BY user_id
		 LIMIT $2 OFFSET $3
		 `
	return r.list(ctx, query, pieceID, limit, offset)
}
