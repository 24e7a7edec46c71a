package main

import (
	"context"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/studybuddy/db"
	"github.com/garnizeh/studybuddy/internal/config"
	"github.com/garnizeh/studybuddy/internal/db"
	"github.com/garnizeh/studybuddy/internal/repository/postgres"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Getenv("STUDYBUDDY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxConns:        1,
			SimpleProtocol:  cfg.Database.SimpleProtocol,
			ApplicationName: "studybuddy-db-init",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool, dbfs.PostgresMigrations); err != nil {
			fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
			os.Exit(1)
		}
	default:
		database, err := db.New(ctx, cfg.Database.Path, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Database initialized successfully.")
}
