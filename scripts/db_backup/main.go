package main

import (
	"context"
	"fmt"
	"os"

	"github.com/garnizeh/studybuddy/internal/config"
	"github.com/garnizeh/studybuddy/internal/db"
)

// Backs up the sqlite database next to itself. VACUUM INTO gives a consistent copy while the
// server keeps running.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Getenv("STUDYBUDDY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.Driver != "sqlite" {
		fmt.Fprintf(os.Stderr, "Backup error: only the sqlite driver is supported, use pg_dump for %s\n", cfg.Database.Driver)
		os.Exit(1)
	}

	src := cfg.Database.Path
	dst := src + ".bak"
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, src, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := database.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", dst)
}
