// Package server wires configuration, storage, services and transports
// into the running NovelNest application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/novelnest/internal/logging"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/config"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/novelnest/internal/server/rest"
	"github.com/dmitrijs2005/novelnest/internal/server/services"

	gs "github.com/dmitrijs2005/novelnest/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	services    rest.Services
}

// NewApp validates c and builds every component. The database is opened
// lazily; nothing connects until Run.
func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	codec, err := auth.NewTokenCodec(c)
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}
	hasher, err := auth.NewPasswordHasher(c)
	if err != nil {
		return nil, fmt.Errorf("password hasher init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		services: rest.Services{
			Auth:   services.NewAuthService(db, rm, codec, hasher),
			Users:  services.NewUserService(db, rm, hasher),
			Pieces: services.NewPieceService(db, rm),
			Likes:  services.NewLikeService(db, rm),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.services, app.config.LogLevel == "debug")
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema, then serves REST and gRPC health until ctx is
// cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return nil
}
