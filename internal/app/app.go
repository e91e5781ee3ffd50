// Package app is the route visualization service: a local HTTP server that
// serves the map page and an on-demand trip API. The server holds no mutable
// state across requests; every query recomputes trips and geometry freshly.
package app

import (
	_ "embed"
	"log/slog"

	"pendler.kildedal.dk/internal/config"
	"pendler.kildedal.dk/internal/polyline"
	"pendler.kildedal.dk/internal/transit"
)

//go:embed static/index.html
var indexPage []byte

// Application wires the dependencies of the map server's handlers.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Planner transit.Planner
	Palette polyline.Palette
	Version string
}

// New builds an Application around the given planner backend.
func New(cfg *config.Config, logger *slog.Logger, planner transit.Planner, version string) *Application {
	return &Application{
		Config:  cfg,
		Logger:  logger,
		Planner: planner,
		Palette: polyline.DefaultPalette(),
		Version: version,
	}
}
