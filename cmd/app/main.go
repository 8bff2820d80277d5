package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusdash/cmd"
	httpadapter "campusdash/internal/adapters/in/http"
	"campusdash/internal/adapters/out/postgres"
	"campusdash/internal/core/domain/model/kernel"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "campusdash",
		Usage: "campus dining order pooling and run settlement",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before the environment"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			sweepCommand(),
			catalogCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) (cmd.Config, *slog.Logger, error) {
	cfg, err := cmd.LoadConfig(c.String("env-file"))
	if err != nil {
		return cmd.Config{}, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API, the snapshot listener and the scheduled jobs",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "apply the schema before serving"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			if err = cfg.ValidateServe(); err != nil {
				return err
			}

			db, err := cmd.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer cmd.CloseDatabase(db) //nolint:errcheck

			if c.Bool("migrate") {
				if err = postgres.Migrate(db); err != nil {
					return err
				}
			}

			root, err := cmd.NewCompositionRoot(cfg, db, logger)
			if err != nil {
				return err
			}
			defer root.Close() //nolint:errcheck

			e, err := root.CreateEcho()
			if err != nil {
				return err
			}
			jobManager := root.CreateJobManager()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return httpadapter.Serve(ctx, e, fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort))
			})
			g.Go(func() error {
				return root.SnapshotListener().Run(ctx)
			})
			g.Go(func() error {
				if err := jobManager.StartAll(); err != nil {
					return err
				}
				<-ctx.Done()
				jobManager.StopAll()
				return nil
			})

			logger.Info("campusdash started", "port", cfg.HTTPPort)
			if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("campusdash stopped")
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the schema",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			db, err := cmd.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer cmd.CloseDatabase(db) //nolint:errcheck

			if err = postgres.Migrate(db); err != nil {
				return err
			}
			logger.Info("schema migrated")
			return nil
		},
	}
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "expire overdue delivery requests once",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			db, err := cmd.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer cmd.CloseDatabase(db) //nolint:errcheck

			root, err := cmd.NewCompositionRoot(cfg, db, logger)
			if err != nil {
				return err
			}
			defer root.Close() //nolint:errcheck

			result, err := root.CreateExpirySweepJob().RunOnce(c.Context)
			fmt.Fprintf(c.App.Writer, "expired %d, skipped %d\n", result.Expired, result.Skipped)
			return err
		},
	}
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "maintain hall prices and fee overrides",
		Subcommands: []*cli.Command{
			{
				Name:  "set-price",
				Usage: "set the base price in dollars of a hall's dining window",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "hall", Required: true},
					&cli.StringFlag{Name: "window", Required: true, Usage: "breakfast, lunch or dinner"},
					&cli.StringFlag{Name: "price", Required: true},
				},
				Action: func(c *cli.Context) error {
					price, err := decimal.NewFromString(c.String("price"))
					if err != nil {
						return fmt.Errorf("price: %w", err)
					}
					hall, err := kernel.NewHallID(c.String("hall"))
					if err != nil {
						return err
					}
					window := kernel.WindowType(c.String("window"))
					if err = window.Validate(); err != nil {
						return err
					}
					return withRoot(c, func(root *cmd.CompositionRoot) error {
						return root.HallRepository().SetBasePrice(c.Context, kernel.QueueKey{HallID: hall, WindowType: window}, price)
					})
				},
			},
			{
				Name:  "set-fee",
				Usage: "override the platform fee in dollars for a hall",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "hall", Required: true},
					&cli.StringFlag{Name: "fee", Required: true},
				},
				Action: func(c *cli.Context) error {
					fee, err := decimal.NewFromString(c.String("fee"))
					if err != nil {
						return fmt.Errorf("fee: %w", err)
					}
					hall, err := kernel.NewHallID(c.String("hall"))
					if err != nil {
						return err
					}
					return withRoot(c, func(root *cmd.CompositionRoot) error {
						return root.HallRepository().SetPlatformFeeOverride(c.Context, hall, fee)
					})
				},
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "sign a bearer token for a user id, for local testing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "user id; a new one is generated when empty"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := setup(c)
			if err != nil {
				return err
			}

			userID := kernel.NewUUID()
			if raw := c.String("user"); raw != "" {
				if userID, err = kernel.UUIDFromString(raw); err != nil {
					return err
				}
			}

			token, err := httpadapter.IssueToken([]byte(cfg.JWTSecret), userID, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "user %s\n%s\n", userID, token)
			return nil
		},
	}
}

func withRoot(c *cli.Context, fn func(root *cmd.CompositionRoot) error) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	db, err := cmd.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer cmd.CloseDatabase(db) //nolint:errcheck

	root, err := cmd.NewCompositionRoot(cfg, db, logger)
	if err != nil {
		return err
	}
	defer root.Close() //nolint:errcheck

	return fn(root)
}
