// Package main implements the entry point for the Habitutor API server,
// which runs the daily flashcard sessions and manages the database schema.
package main

import (
	"fmt"
	"os"
	_ "time/tzdata" // flashcard days follow an IANA zone even on hosts without zoneinfo

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "habitutor-api: %v\n", err)
		os.Exit(1)
	}
}

// newCLI assembles the command tree. serve is the default action.
func newCLI() *cli.App {
	app := cli.NewApp()
	app.Name = "habitutor-api"
	app.Usage = "daily flashcard session API"
	app.Action = serveAction

	app.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "run the HTTP server",
			Action: serveAction,
		},
		{
			Name:  "migrate",
			Usage: "manage the database schema",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "log every migration goose applies",
				},
			},
			Subcommands: []*cli.Command{
				migrateCommand("up", "apply all pending migrations"),
				migrateCommand("down", "roll back the most recent migration"),
				migrateCommand("status", "print the state of every migration"),
				migrateCommand("version", "print the current schema version"),
				{
					Name:   "validate",
					Usage:  "fail unless every embedded migration has been applied",
					Action: validateAction,
				},
			},
		},
	}
	return app
}

func serveAction(cctx *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(cctx.Context, cfg, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(cctx.Context)
}

func migrateCommand(name, usage string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(cctx *cli.Context) error {
			return withMigrationDB(cctx, func(m *migrator) error {
				return m.run(cctx.Context, name)
			})
		},
	}
}

func validateAction(cctx *cli.Context) error {
	return withMigrationDB(cctx, func(m *migrator) error {
		return m.validate(cctx.Context)
	})
}

// withMigrationDB loads configuration, connects and hands a migrator to fn.
func withMigrationDB(cctx *cli.Context, fn func(m *migrator) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(cctx.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", "error", err)
		}
	}()

	m, err := newMigrator(db, logger, cctx.Bool("verbose"))
	if err != nil {
		return err
	}
	return fn(m)
}
