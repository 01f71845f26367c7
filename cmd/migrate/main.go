package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"NewsPipeline/internal/config"
	"NewsPipeline/internal/infrastructure/migration"
	"NewsPipeline/internal/logging"
)

func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", "", "path to migrations directory (default from config)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = logger.Sync() }()

	if migrationsPath == "" {
		migrationsPath = cfg.Database.MigrationsPath
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	m, err := migration.New(db, migrationsPath, logger)
	if err != nil {
		logger.Fatal("init migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("close migrator", zap.Error(err))
		}
	}()

	if err := run(m, args); err != nil {
		logger.Error("migration failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func run(m *migration.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "force":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", args[1], err)
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: migrate [-path dir] <command>

commands:
  up          apply all pending migrations
  down        roll back all migrations
  steps N     apply N migrations (negative rolls back)
  force V     set version V without running migrations
  version     print the current version`)
}
