package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"pendler.kildedal.dk/internal/app"
	"pendler.kildedal.dk/internal/config"
	"pendler.kildedal.dk/internal/display"
	"pendler.kildedal.dk/internal/hafas"
	"pendler.kildedal.dk/internal/models"
	"pendler.kildedal.dk/internal/oba"
	"pendler.kildedal.dk/internal/report"
	"pendler.kildedal.dk/internal/transit"
)

const version = "1.0.0"

func main() {
	cliApp := &cli.App{
		Name:    "pendler",
		Usage:   "leave-by times and route maps for the fixed commute",
		Version: version,
		Commands: []*cli.Command{
			searchCommand(),
			departuresCommand(),
			mapCommand(),
		},
		// No subcommand prints the leave-by table for the configured commute.
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return cli.ShowAppHelp(c)
			}
			env, err := newEnv()
			if err != nil {
				return err
			}
			defer report.Flush()
			return runCommute(c.Context, env)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pendler: %v\n", err)
		report.ReportError(err)
		report.Flush()
		os.Exit(1)
	}
}

// env bundles the pieces every command needs.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	planner transit.Planner
	out     io.Writer
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	report.Setup()
	report.ConfigureScope(cfg.Env, version)

	planner, err := newPlanner(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, planner: planner, out: os.Stdout}, nil
}

func newPlanner(cfg *config.Config, logger *slog.Logger) (transit.Planner, error) {
	switch cfg.Backend {
	case config.BackendHafas:
		return hafas.NewClient(cfg.HafasEndpoint, cfg.HafasAccessID, app.NewPooledClient(), logger), nil
	case config.BackendOba:
		return oba.NewClient(cfg.ObaBaseURL, cfg.ObaAPIKey, logger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "resolve a free-text location query to stops",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("search needs a query, e.g. pendler search \"Kildedal St.\"")
			}
			env, err := newEnv()
			if err != nil {
				return err
			}
			defer report.Flush()

			query := c.Args().First()
			stops, err := env.planner.LocationSearch(c.Context, query)
			if err != nil {
				return fmt.Errorf("location search for %q: %w", query, err)
			}
			display.RenderStops(env.out, query, stops)
			return nil
		},
	}
}

func departuresCommand() *cli.Command {
	return &cli.Command{
		Name:  "departures",
		Usage: "show the departure board for the origin station",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "window", Value: 120, Usage: "minutes to look ahead"},
			&cli.BoolFlag{Name: "towards-destination", Usage: "only departures heading towards the destination"},
		},
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			defer report.Flush()

			origin, ok, err := resolveStop(c.Context, env, env.cfg.OriginQuery)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(env.out, "Could not find %q\n", env.cfg.OriginQuery)
				return nil
			}

			dq := transit.DepartureQuery{
				StopID:        origin.ID,
				WindowMinutes: c.Int("window"),
			}
			if c.Bool("towards-destination") {
				dest, ok, err := resolveDestination(c.Context, env)
				if err != nil {
					return err
				}
				if !ok {
					// Fall back to the unfiltered board rather than
					// failing the whole command over a filter.
					env.logger.Warn("destination not found, showing all departures",
						"query", env.cfg.DestinationQuery)
				} else {
					dq.DirectionID = dest.ID
				}
			}

			deps, err := env.planner.DepartureBoard(c.Context, dq)
			if err != nil {
				return fmt.Errorf("departure board for %s: %w", origin.Name, err)
			}
			display.RenderDepartures(env.out, origin, deps, time.Now())
			return nil
		},
	}
}

func mapCommand() *cli.Command {
	return &cli.Command{
		Name:  "map",
		Usage: "serve the interactive route map",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "listen port (overrides PENDLER_PORT)"},
		},
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			defer report.Flush()

			if c.IsSet("port") {
				env.cfg.Port = c.Int("port")
			}
			return runMapServer(c.Context, env)
		},
	}
}

// runCommute prints the leave-by table: resolve both endpoints, search trips
// between them, and render. Empty results are a warning, not a failure, and
// never a non-zero exit.
func runCommute(ctx context.Context, env *env) error {
	origin, ok, err := resolveStop(ctx, env, env.cfg.OriginQuery)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(env.out, "Could not find %q\n", env.cfg.OriginQuery)
		return nil
	}
	dest, ok, err := resolveDestination(ctx, env)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(env.out, "Could not find %q under any spelling\n", env.cfg.DestinationQuery)
		return nil
	}

	trips, err := env.planner.TripSearch(ctx, transit.TripQuery{
		OriginID:      origin.ID,
		DestinationID: dest.ID,
		Limit:         env.cfg.TripLimit,
	})
	if err != nil {
		if errors.Is(err, transit.ErrUnsupported) {
			return fmt.Errorf("the %s backend cannot plan trips; use the hafas backend", env.cfg.Backend)
		}
		return fmt.Errorf("trip search %s → %s: %w", origin.Name, dest.Name, err)
	}

	display.RenderTrips(env.out, origin, dest, trips, env.cfg.ScheduleOptions(), time.Now())
	return nil
}

// resolveStop turns a free-text query into the first matching stop. A query
// that matches nothing is reported with ok=false and a nil error; only
// transport or upstream failures come back as errors.
func resolveStop(ctx context.Context, env *env, query string) (models.Stop, bool, error) {
	stops, err := env.planner.LocationSearch(ctx, query)
	if err != nil {
		return models.Stop{}, false, fmt.Errorf("location search for %q: %w", query, err)
	}
	if len(stops) == 0 {
		return models.Stop{}, false, nil
	}
	return stops[0], true, nil
}

// resolveDestination tries the configured destination query and then each
// fallback spelling in order. The upstream matcher is strict about
// diacritics, so "Fuglsang Allé" may only resolve as "Fuglsang Alle".
func resolveDestination(ctx context.Context, env *env) (models.Stop, bool, error) {
	queries := append([]string{env.cfg.DestinationQuery}, env.cfg.DestinationFallbacks...)

	var lastErr error
	for _, q := range queries {
		stops, err := env.planner.LocationSearch(ctx, q)
		if err != nil {
			lastErr = err
			continue
		}
		if len(stops) > 0 {
			if q != env.cfg.DestinationQuery {
				env.logger.Info("destination resolved via fallback spelling", "query", q)
			}
			return stops[0], true, nil
		}
	}
	if lastErr != nil {
		return models.Stop{}, false, fmt.Errorf("destination %q: %w", env.cfg.DestinationQuery, lastErr)
	}
	return models.Stop{}, false, nil
}

// runMapServer runs the visualization HTTP server until interrupted.
func runMapServer(ctx context.Context, env *env) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(env.cfg, env.logger, env.planner, version)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", env.cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		env.logger.Info("starting map server", "addr", srv.Addr, "env", env.cfg.Env, "backend", env.cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	env.logger.Info("shutting down map server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
