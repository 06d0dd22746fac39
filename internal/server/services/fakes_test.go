package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/dbx"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/config"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
	likesrepo "github.com/dmitrijs2005/novelnest/internal/server/repositories/likes"
	piecesrepo "github.com/dmitrijs2005/novelnest/internal/server/repositories/pieces"
	usersrepo "github.com/dmitrijs2005/novelnest/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		SigningAlgorithm:            "HS256",
		AccessTokenValidityDuration: 30 * time.Minute,
		BcryptCost:                  4,
	}
}

func newHasher(t *testing.T) *auth.PasswordHasher {
	t.Helper()
	h, err := auth.NewPasswordHasher(testConfig())
	require.NoError(t, err)
	return h
}

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	c, err := auth.NewTokenCodec(testConfig())
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

// memStore is an in-memory stand-in for the three tables. Every repository
// built from it shares the same state regardless of the DBTX passed in.
type memStore struct {
	mu sync.Mutex

	users    map[int64]*models.User
	nextUser int64

	pieces    map[int64]*models.Piece
	nextPiece int64

	likes map[models.Like]bool

	// failWith, when set, is returned by every repository call.
	failWith error
	// skipExists makes likes.Exists report false, simulating a concurrent
	// insert the lock did not see.
	skipExists bool
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[int64]*models.User{},
		pieces: map[int64]*models.Piece{},
		likes:  map[models.Like]bool{},
	}
}

func (s *memStore) addUser(name, email string, role models.Role, digest string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u := &models.User{ID: s.nextUser, UserName: name, Email: email, Role: role, PasswordHash: digest}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addPiece(title string, likes int64) *models.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPiece++
	p := &models.Piece{ID: s.nextPiece, Title: title, NumOfLikes: likes}
	s.pieces[p.ID] = p
	return p
}

type fakeRepoManager struct {
	s *memStore
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return &fakeUsersRepo{m.s} }
func (m *fakeRepoManager) Pieces(dbx.DBTX) piecesrepo.Repository        { return &fakePiecesRepo{m.s} }
func (m *fakeRepoManager) Likes(dbx.DBTX) likesrepo.Repository          { return &fakeLikesRepo{m.s} }

// --- users ---

type fakeUsersRepo struct{ s *memStore }

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, e := range s.users {
		if e.UserName == u.UserName {
			return nil, usersrepo.ErrUsernameTaken
		}
		if e.Email == u.Email {
			return nil, usersrepo.ErrEmailTaken
		}
	}
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = time.Now()
	s.users[u.ID] = copyUser(u)
	return u, nil
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUsersRepo) GetByUsername(_ context.Context, name string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if u.UserName == name {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) FindByUsernameOrEmail(_ context.Context, name, email string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var byEmail *models.User
	for _, u := range s.users {
		if u.UserName == name {
			return copyUser(u), nil
		}
		if u.Email == email {
			byEmail = copyUser(u)
		}
	}
	if byEmail != nil {
		return byEmail, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) takenBy(match func(*models.User) bool, id int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	for _, u := range s.users {
		if u.ID != id && match(u) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUsersRepo) UsernameTakenByOther(_ context.Context, name string, id int64) (bool, error) {
	return r.takenBy(func(u *models.User) bool { return u.UserName == name }, id)
}

func (r *fakeUsersRepo) EmailTakenByOther(_ context.Context, email string, id int64) (bool, error) {
	return r.takenBy(func(u *models.User) bool { return u.Email == email }, id)
}

func (r *fakeUsersRepo) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	all := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (r *fakeUsersRepo) Update(_ context.Context, id int64, up models.UserUpdate) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if up.UserName != nil {
		u.UserName = *up.UserName
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.Password != nil {
		u.PasswordHash = *up.Password
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
	return copyUser(u), nil
}

func (r *fakeUsersRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.users, id)
	for l := range s.likes {
		if l.UserID == id {
			delete(s.likes, l)
		}
	}
	return nil
}

// --- pieces ---

type fakePiecesRepo struct{ s *memStore }

func copyPiece(p *models.Piece) *models.Piece {
	c := *p
	return &c
}

func (r *fakePiecesRepo) Create(_ context.Context, p *models.Piece) (*models.Piece, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.nextPiece++
	p.ID = s.nextPiece
	p.CreatedAt = time.Now()
	s.pieces[p.ID] = copyPiece(p)
	return p, nil
}

func (r *fakePiecesRepo) GetByID(_ context.Context, id int64) (*models.Piece, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	p, ok := s.pieces[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyPiece(p), nil
}

func (r *fakePiecesRepo) GetForUpdate(ctx context.Context, id int64) (*models.Piece, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePiecesRepo) List(_ context.Context, search string, limit, offset int) ([]*models.Piece, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var all []*models.Piece
	for _, p := range s.pieces {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
			all = append(all, copyPiece(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (r *fakePiecesRepo) Update(_ context.Context, id int64, u models.PieceUpdate) (*models.Piece, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	p, ok := s.pieces[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	return copyPiece(p), nil
}

func (r *fakePiecesRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.pieces[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.pieces, id)
	for l := range s.likes {
		if l.PieceID == id {
			delete(s.likes, l)
		}
	}
	return nil
}

func (r *fakePiecesRepo) IncrementLikes(_ context.Context, id int64) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	p, ok := s.pieces[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	p.NumOfLikes++
	return p.NumOfLikes, nil
}

func (r *fakePiecesRepo) DecrementLikes(_ context.Context, id int64) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	p, ok := s.pieces[id]
	if !ok || p.NumOfLikes == 0 {
		return 0, nil
	}
	p.NumOfLikes--
	return p.NumOfLikes, nil
}

// --- likes ---

type fakeLikesRepo struct{ s *memStore }

func (r *fakeLikesRepo) Create(_ context.Context, userID, pieceID int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	k := models.Like{UserID: userID, PieceID: pieceID}
	if s.likes[k] {
		return likesrepo.ErrAlreadyLiked
	}
	s.likes[k] = true
	return nil
}

func (r *fakeLikesRepo) Delete(_ context.Context, userID, pieceID int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	k := models.Like{UserID: userID, PieceID: pieceID}
	if !s.likes[k] {
		return false, nil
	}
	delete(s.likes, k)
	return true, nil
}

func (r *fakeLikesRepo) Exists(_ context.Context, userID, pieceID int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if s.skipExists {
		return false, nil
	}
	return s.likes[models.Like{UserID: userID, PieceID: pieceID}], nil
}

func (r *fakeLikesRepo) CountForPiece(_ context.Context, pieceID int64) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	var n int64
	for l := range s.likes {
		if l.PieceID == pieceID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLikesRepo) filter(match func(models.Like) bool, limit, offset int) ([]models.Like, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []models.Like{}
	for l := range s.likes {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].PieceID < out[j].PieceID
	})
	return page(out, limit, offset), nil
}

func (r *fakeLikesRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]models.Like, error) {
	return r.filter(func(l models.Like) bool { return l.UserID == userID }, limit, offset)
}

func (r *fakeLikesRepo) ListByPiece(_ context.Context, pieceID int64, limit, offset int) ([]models.Like, error) {
	return r.filter(func(l models.Like) bool { return l.PieceID == pieceID }, limit, offset)
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return all[:0]
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
