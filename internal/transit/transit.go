// Package transit defines the capability interface shared by the journey
// planning backends. Two upstream protocols are supported (HAFAS mgate and the
// OneBusAway REST API); callers program against Planner and never see wire
// shapes.
package transit

import (
	"context"
	"errors"
	"fmt"

	"pendler.kildedal.dk/internal/models"
)

// ErrUnsupported is returned by a backend for a capability its upstream
// protocol does not offer (e.g. journey planning on OneBusAway).
var ErrUnsupported = errors.New("operation not supported by this backend")

// UpstreamError is an application-level error reported by the upstream API
// itself, as opposed to a transport failure. It is surfaced to the user and
// never retried.
type UpstreamError struct {
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error %s", e.Code)
	}
	return fmt.Sprintf("upstream error %s: %s", e.Code, e.Message)
}

// TripQuery describes a journey search. Endpoints are given either as stop IDs
// from a previous LocationSearch or as raw coordinates; coordinates take
// precedence when both are set.
type TripQuery struct {
	OriginID      string
	DestinationID string
	Origin        *models.LatLng
	Destination   *models.LatLng
	Limit         int
	WithGeometry  bool
}

// DepartureQuery describes a departure board request for a single stop.
// DirectionID optionally filters to departures heading towards that stop.
// WindowMinutes bounds how far ahead the board looks.
type DepartureQuery struct {
	StopID        string
	DirectionID   string
	WindowMinutes int
}

// Planner is the backend capability interface: free-text (or coordinate)
// location resolution, journey search, and departure boards. Implementations
// may support a subset and return ErrUnsupported for the rest.
//
// An empty result slice with a nil error is a first-class "nothing found"
// outcome, not a failure. Transport problems are returned as wrapped errors;
// errors reported by the upstream application itself come back as
// *UpstreamError.
type Planner interface {
	LocationSearch(ctx context.Context, query string) ([]models.Stop, error)
	TripSearch(ctx context.Context, q TripQuery) ([]models.Trip, error)
	DepartureBoard(ctx context.Context, q DepartureQuery) ([]models.Departure, error)
}
