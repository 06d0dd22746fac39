package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminID = auth.Identity{ID: 1, Role: models.RoleAdmin}
	userID  = auth.Identity{ID: 2, Role: models.RoleUser}
)

func newPieceService(t *testing.T, store *memStore) *PieceService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewPieceService(db, &fakeRepoManager{s: store})
}

func TestPieceCreate(t *testing.T) {
	store := newMemStore()
	s := newPieceService(t, store)

	_, err := s.Create(context.Background(), userID, "Moonlit Path", "")
	assert.ErrorIs(t, err, common.ErrForbidden)

	p, err := s.Create(context.Background(), adminID, "Moonlit Path", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.NumOfLikes)
	assert.Equal(t, "", p.Description)

	_, err = s.Create(context.Background(), adminID, "  ", "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Create(context.Background(), adminID, strings.Repeat("x", models.MaxTitleLength+1), "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Create(context.Background(), adminID, strings.Repeat("ж", models.MaxTitleLength), "")
	assert.NoError(t, err, "length counts characters, not bytes")
}

func TestPieceGetListSearch(t *testing.T) {
	store := newMemStore()
	store.addPiece("Moonlit Path", 0)
	store.addPiece("Sunlit Road", 0)
	store.addPiece("The Moon Below", 0)
	s := newPieceService(t, store)

	p, err := s.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Sunlit Road", p.Title)

	_, err = s.Get(context.Background(), 42)
	assert.EqualError(t, err, "Piece with id 42 was not found")

	all, err := s.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	moon, err := s.List(context.Background(), "moon", 10, 0)
	require.NoError(t, err)
	require.Len(t, moon, 2)
	assert.Equal(t, "Moonlit Path", moon[0].Title)
}

func TestPieceUpdateDelete(t *testing.T) {
	store := newMemStore()
	p := store.addPiece("Draft", 3)
	s := newPieceService(t, store)

	_, err := s.Update(context.Background(), userID, p.ID, models.PieceUpdate{Title: ptr("Final")})
	assert.ErrorIs(t, err, common.ErrForbidden)

	got, err := s.Update(context.Background(), adminID, p.ID, models.PieceUpdate{Title: ptr("Final")})
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, int64(3), got.NumOfLikes)

	_, err = s.Update(context.Background(), adminID, p.ID, models.PieceUpdate{Title: ptr("")})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Update(context.Background(), adminID, 99, models.PieceUpdate{Description: ptr("x")})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, s.Delete(context.Background(), userID, p.ID), common.ErrForbidden)
	require.NoError(t, s.Delete(context.Background(), adminID, p.ID))
	assert.ErrorIs(t, s.Delete(context.Background(), adminID, p.ID), common.ErrorNotFound)
}

func TestPieceStoreError(t *testing.T) {
	store := newMemStore()
	store.failWith = errors.New("db down")
	s := newPieceService(t, store)

	_, err := s.List(context.Background(), "", 10, 0)
	assert.ErrorIs(t, err, common.ErrorInternal)
	_, err = s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrorInternal)
}
