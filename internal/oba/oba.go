// Package oba implements the transit.Planner capability interface against a
// OneBusAway REST deployment. OBA has no journey planner, so TripSearch is
// unsupported; the board and coordinate search capabilities are enough to use
// the departure features against any OBA region.
package oba

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	onebusaway "github.com/OneBusAway/go-sdk"
	"github.com/OneBusAway/go-sdk/option"

	"pendler.kildedal.dk/internal/models"
	"pendler.kildedal.dk/internal/transit"
)

// Client wraps one OBA server.
type Client struct {
	client *onebusaway.Client
	logger *slog.Logger
}

var _ transit.Planner = (*Client)(nil)

// NewClient builds a Client for the given server.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		client: onebusaway.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		logger: logger,
	}
}

// LocationSearch resolves a "lat,lon" query via stops-for-location. OBA has
// no free-text location search, so anything that does not parse as a
// coordinate pair is unsupported rather than an empty result.
func (c *Client) LocationSearch(ctx context.Context, query string) ([]models.Stop, error) {
	lat, lon, ok := parseCoordinatePair(query)
	if !ok {
		return nil, fmt.Errorf("free-text location search: %w", transit.ErrUnsupported)
	}

	response, err := c.client.StopsForLocation.List(ctx, onebusaway.StopsForLocationListParams{
		Lat: onebusaway.F(lat),
		Lon: onebusaway.F(lon),
	})
	if err != nil {
		return nil, fmt.Errorf("stops-for-location: %w", err)
	}

	stops := make([]models.Stop, 0, len(response.Data.List))
	for _, stop := range response.Data.List {
		stops = append(stops, models.Stop{
			Name:     stop.Name,
			ID:       stop.ID,
			ExtID:    stop.Code,
			Position: &models.LatLng{Lat: stop.Lat, Lng: stop.Lon},
		})
	}
	return stops, nil
}

// TripSearch is not available on the OBA REST API.
func (c *Client) TripSearch(ctx context.Context, q transit.TripQuery) ([]models.Trip, error) {
	return nil, fmt.Errorf("journey planning: %w", transit.ErrUnsupported)
}

// DepartureBoard fetches upcoming departures for one stop. OBA reports epoch
// milliseconds; zero predicted values mean no realtime data for that arrival.
func (c *Client) DepartureBoard(ctx context.Context, q transit.DepartureQuery) ([]models.Departure, error) {
	params := onebusaway.ArrivalAndDepartureListParams{}
	if q.WindowMinutes > 0 {
		params.MinutesAfter = onebusaway.F(int64(q.WindowMinutes))
	}

	response, err := c.client.ArrivalAndDeparture.List(ctx, q.StopID, params)
	if err != nil {
		return nil, fmt.Errorf("arrivals-and-departures-for-stop: %w", err)
	}

	entries := response.Data.Entry.ArrivalsAndDepartures
	departures := make([]models.Departure, 0, len(entries))
	for _, entry := range entries {
		if entry.ScheduledDepartureTime == 0 {
			continue
		}
		dep := models.Departure{
			Time:      models.TimePair{Scheduled: epochMillis(entry.ScheduledDepartureTime)},
			Line:      entry.RouteShortName,
			Direction: entry.TripHeadsign,
		}
		if entry.PredictedDepartureTime > 0 {
			rt := epochMillis(entry.PredictedDepartureTime)
			dep.Time.Realtime = &rt
		}
		departures = append(departures, dep)
	}
	return departures, nil
}

func epochMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func parseCoordinatePair(query string) (lat, lon float64, ok bool) {
	parts := strings.Split(query, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
