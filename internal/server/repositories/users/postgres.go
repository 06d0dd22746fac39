package users

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

const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"

	userColumns = `id, username, email, password, role, created_at`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	if err := s.Scan(&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func mapWriteError(err error) error {
	switch {
	case dbx.IsUniqueViolation(err, constraintUsername):
		return ErrUsernameTaken
	case dbx.IsUniqueViolation(err, constraintEmail):
		return ErrEmailTaken
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, string(user.Role)).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}

	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, userName)
}

func (r *PostgresRepository) FindByUsernameOrEmail(ctx context.Context, userName, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE username = $1 OR email = $2
		 ORDER BY (username = $1) DESC
		 LIMIT 1
		 `
	return r.getOne(ctx, query, userName, email)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) UsernameTakenByOther(ctx context.Context, userName string, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, userName, id)
}

func (r *PostgresRepository) EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, id)
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 ORDER BY id
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, u models.UserUpdate) (*models.User, error) {
	if u.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if u.UserName != nil {
		add("username", *u.UserName)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.Password != nil {
		add("password", *u.Password)
	}
	if u.Role != nil {
		add("role", string(*u.Role))
	}
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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
