// Command admin runs the schema migrations and creates an admin account.
//
//	admin [-username name] [-email addr] [server config flags]
package main

import (
	"context"
	"database/sql"
	"flag"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/novelnest/internal/flagx"
	"github.com/dmitrijs2005/novelnest/internal/server/admincli"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/config"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/novelnest/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var userName, email string

	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&userName, "username", "", "admin username")
	fs.StringVar(&email, "email", "", "admin email")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-username", "-email"}))

	cfg := config.LoadConfig()

	hasher, err := auth.NewPasswordHasher(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	us := services.NewUserService(db, rm, hasher)
	if _, err := admincli.CreateAdmin(ctx, us, admincli.NewPrompter(os.Stdin, os.Stdout), userName, email); err != nil {
		log.Fatalf("%v", err)
	}
}
