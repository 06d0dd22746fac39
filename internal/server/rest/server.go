// Package rest exposes the NovelNest API over HTTP with gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/novelnest/internal/logging"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/dmitrijs2005/novelnest/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	APIName    = "NovelNest API"
	APIVersion = "1.0.0"

	shutdownTimeout = 10 * time.Second
)

type AuthService interface {
	Login(ctx context.Context, userName, password string) (*services.AccessToken, error)
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

type UserService interface {
	Register(ctx context.Context, in models.NewUser) (*models.User, error)
	CreateAdmin(ctx context.Context, caller auth.Identity, in models.NewUser) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, caller auth.Identity, id int64, u models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
}

type PieceService interface {
	List(ctx context.Context, search string, limit, offset int) ([]*models.Piece, error)
	Get(ctx context.Context, id int64) (*models.Piece, error)
	Create(ctx context.Context, caller auth.Identity, title, description string) (*models.Piece, error)
	Update(ctx context.Context, caller auth.Identity, id int64, u models.PieceUpdate) (*models.Piece, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
}

type LikeService interface {
	Toggle(ctx context.Context, caller auth.Identity, pieceID int64, dir models.LikeDirection) (*services.ToggleResult, error)
	Count(ctx context.Context, pieceID int64) (*models.LikeCount, error)
	ListMine(ctx context.Context, caller auth.Identity, limit, offset int) ([]models.Like, error)
	ListForPiece(ctx context.Context, pieceID int64, limit, offset int) ([]models.Like, error)
}

// Services bundles the business logic the handlers call into.
type Services struct {
	Auth   AuthService
	Users  UserService
	Pieces PieceService
	Likes  LikeService
}

type Server struct {
	address string
	logger  logging.Logger
	svc     Services
	router  *gin.Engine
}

func NewServer(address string, l logging.Logger, svc Services, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		address: address,
		logger:  l.With("module", "rest_server"),
		svc:     svc,
		router:  gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the configured router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}

	s.router.Use(gin.Recovery(), s.requestID(), s.requestLogger(), cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	r := s.router

	r.GET("/", s.root)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/login", s.login)

	authed := s.requireAuth()
	admin := s.requireAdmin()

	users := r.Group("/users")
	{
		users.GET("", s.listUsers)
		users.POST("", s.registerUser)
		users.POST("/admin", authed, admin, s.createAdmin)
		users.GET("/:id", s.getUser)
		users.PUT("/:id", authed, s.updateUser)
		users.DELETE("/:id", authed, s.deleteUser)
	}

	pieces := r.Group("/pieces")
	{
		pieces.GET("", s.listPieces)
		pieces.GET("/:id", s.getPiece)
		pieces.POST("", authed, admin, s.createPiece)
		pieces.PUT("/:id", authed, admin, s.updatePiece)
		pieces.DELETE("/:id", authed, admin, s.deletePiece)
	}

	likes := r.Group("/likes")
	{
		likes.POST("", authed, s.toggleLike)
		likes.GET("/count/:piece_id", s.likeCount)
		likes.GET("/my-likes", authed, s.myLikes)
		likes.GET("/:piece_id", s.pieceLikes)
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to " + APIName,
		"version": APIVersion,
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
