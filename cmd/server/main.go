package main

import (
	"context"
	"fmt"
	"os"

	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

// AppVersion is overridden at build time with -ldflags.
var AppVersion = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "go-blog-app",
		Usage:   "Blog backend with a memoizing cache layer",
		Version: AppVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the config file",
				Sources: cli.EnvVars("BLOG_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrateAction,
			},
			{
				Name:  "cache",
				Usage: "manage the cache store",
				Commands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "remove every cached entry",
						Action: clearCacheAction,
					},
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

// setup loads the configuration named by the --config flag and builds the logger.
func setup(c *cli.Command) (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		// The logger is not yet initialized.
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logger.New(cfg.Log, nil), nil
}

func migrateAction(ctx context.Context, c *cli.Command) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB); err != nil {
		return err
	}
	log.Info("Migrations applied successfully.")
	return nil
}

func clearCacheAction(ctx context.Context, c *cli.Command) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	store, err := cache.New(cfg.Cache, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer store.Close()

	return cache.NewInvalidator(store, log).Clear(ctx)
}

func printBanner() {
	fmt.Println(color.YellowString("  __ _  ___        | |__ | | ___   __ _ \n / _` |/ _ \\ _____ | '_ \\| |/ _ \\ / _` |\n| (_| | (_) |_____|| |_) | | (_) | (_| |\n \\__, |\\___/       |_.__/|_|\\___/ \\__, |\n |___/                            |___/ "))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("go-blog-app"), AppVersion)
	color.HiBlack("=========================================\n")
}
