package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/iliyamo/dropit-api/internal/config"
	"github.com/iliyamo/dropit-api/internal/logging"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var cfg config.Config

	// loadConfig runs before every subcommand: .env first, then the
	// environment proper.
	loadConfig := func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if err := loadEnvFile(cmd.String("env-file")); err != nil {
			return ctx, err
		}
		c, err := config.Load()
		if err != nil {
			return ctx, fmt.Errorf("config: %w", err)
		}
		cfg = c
		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		return ctx, nil
	}

	cmd := &cli.Command{
		Name:    "dropit-api",
		Usage:   "DropIt marketplace API",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "dotenv file loaded before reading the environment; missing file is ignored",
				Sources: cli.EnvVars("ENV_FILE"),
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: func(ctx context.Context, _ *cli.Command) error { return runServe(ctx, cfg) },
			},
			{
				Name:  "migrate",
				Usage: "Manage the MySQL schema",
				Commands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "Apply all pending migrations",
						Action: func(ctx context.Context, _ *cli.Command) error { return runMigrate(ctx, cfg, "up") },
					},
					{
						Name:   "down",
						Usage:  "Roll back the last migration",
						Action: func(ctx context.Context, _ *cli.Command) error { return runMigrate(ctx, cfg, "down") },
					},
					{
						Name:   "status",
						Usage:  "Print migration status",
						Action: func(ctx context.Context, _ *cli.Command) error { return runMigrate(ctx, cfg, "status") },
					},
				},
			},
			{
				Name:   "mailer",
				Usage:  "Deliver queued mail over SMTP",
				Action: func(ctx context.Context, _ *cli.Command) error { return runMailer(ctx, cfg) },
			},
		},
		// bare invocation serves, like the old single-purpose binary
		Action: func(ctx context.Context, _ *cli.Command) error { return runServe(ctx, cfg) },
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
