// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"scribe/internal/config"
	"scribe/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Connect migrates on its own outside production; force production
	// semantics so "status" never changes the schema.
	cfg.Env = "production"
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema migrated")
	case "status":
		if err := database.Ping(context.Background(), db); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		migrator := db.Migrator()
		for _, model := range database.PersistentModels() {
			stmt := db.Model(model).Statement
			if err := stmt.Parse(model); err != nil {
				return fmt.Errorf("parse model: %w", err)
			}
			log.Printf("table=%s present=%t", stmt.Schema.Table, migrator.HasTable(model))
		}
	default:
		return usage()
	}
	return nil
}
