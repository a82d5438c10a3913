package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/ta-hiring-api/pkg/config"
	"github.com/noah-isme/ta-hiring-api/pkg/database"
	"github.com/noah-isme/ta-hiring-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	m, err := database.NewMigrator(cfg.Database)
	if err != nil {
		sugar.Fatalw("migrator init failed", "error", err)
	}
	defer m.Close() //nolint:errcheck

	switch command := os.Args[1]; command {
	case "up":
		if err := database.MigrateUp(m); err != nil {
			sugar.Fatalw("migrate up failed", "error", err)
		}
		sugar.Infow("migrated up")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			sugar.Fatalw("migrate down failed", "error", err)
		}
		sugar.Infow("migrated down")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			sugar.Fatalw("read version failed", "error", err)
		}
		sugar.Infow("schema version", "version", version, "dirty", dirty)
	case "force":
		if len(os.Args) < 3 {
			sugar.Fatal("force requires a version argument")
		}
		v, err := strconv.Atoi(os.Args[2])
		if err != nil {
			sugar.Fatalw("invalid version", "value", os.Args[2], "error", err)
		}
		if err := m.Force(v); err != nil {
			sugar.Fatalw("force failed", "error", err)
		}
		sugar.Infow("forced schema version", "version", v)
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println("Commands: up, down, version, force <version>")
}
