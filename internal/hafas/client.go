// Package hafas implements the transit.Planner capability interface against a
// HAFAS mgate endpoint (Rejseplanen's mobile-app API). The wire protocol is a
// bespoke JSON envelope; raw shapes live in wire.go and are coerced into the
// shared domain model at this boundary, so nothing outside the package ever
// sees HAFAS encodings.
package hafas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"pendler.kildedal.dk/internal/models"
	"pendler.kildedal.dk/internal/transit"
)

// DefaultEndpoint is Rejseplanen's mgate endpoint, the same one the mobile app
// talks to. No API key beyond the access ID is required.
const DefaultEndpoint = "https://mobilapps.rejseplanen.dk/bin/iphone.exe"

// DefaultAccessID is the publicly known app identifier the endpoint expects.
const DefaultAccessID = "irkmpm9mdznstenr-android"

const (
	defaultTripLimit      = 6
	defaultBoardWindowMin = 120
	// productFilterAll includes every product class in searches.
	productFilterAll = "127"
)

// Client talks to one mgate endpoint. It is safe for concurrent use; all
// state is immutable after construction.
type Client struct {
	endpoint   string
	accessID   string
	httpClient *http.Client
	logger     *slog.Logger
	loc        *time.Location
}

var _ transit.Planner = (*Client)(nil)

// NewClient builds a Client. A nil httpClient falls back to a plain
// http.Client with a 15 second timeout; loc defaults to the local timezone,
// matching how the upstream reports times.
func NewClient(endpoint, accessID string, httpClient *http.Client, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if accessID == "" {
		accessID = DefaultAccessID
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		endpoint:   endpoint,
		accessID:   accessID,
		httpClient: httpClient,
		logger:     logger,
		loc:        time.Local,
	}
}

// call performs one mgate request and unwraps the single service result.
// Transport problems come back wrapped; an error code from the service itself
// becomes a *transit.UpstreamError.
func (c *Client) call(ctx context.Context, meth string, req any) (json.RawMessage, error) {
	body := envelope{
		Auth:    authBlock{Type: "AID", Aid: c.accessID},
		Client:  clientBlock{Type: "AND", ID: "DK"},
		Ver:     "1.43",
		Ext:     "DK.9",
		Lang:    "en",
		SvcReqL: []svcReq{{Meth: meth, Req: req}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", meth, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", meth, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "pendler/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", meth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calling %s: unexpected status %d", meth, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", meth, err)
	}

	var top topResponse
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", meth, err)
	}
	if len(top.SvcResL) == 0 {
		return nil, fmt.Errorf("decoding %s response: empty service result list", meth)
	}

	svc := top.SvcResL[0]
	if svc.Err != "" && svc.Err != "OK" {
		return nil, &transit.UpstreamError{Code: svc.Err, Message: svc.ErrTxt}
	}
	return svc.Res, nil
}

// LocationSearch resolves free text into stops via LocMatch. An empty result
// is a valid outcome; fallback spellings are the caller's business.
func (c *Client) LocationSearch(ctx context.Context, query string) ([]models.Stop, error) {
	res, err := c.call(ctx, "LocMatch", map[string]any{
		"input": map[string]any{
			"field": "S",
			"loc":   map[string]any{"name": query, "type": "S"},
		},
	})
	if err != nil {
		return nil, err
	}

	var match locMatchRes
	if err := json.Unmarshal(res, &match); err != nil {
		return nil, fmt.Errorf("decoding LocMatch result: %w", err)
	}

	stops := make([]models.Stop, 0, len(match.Match.LocL))
	for _, loc := range match.Match.LocL {
		stop := models.Stop{Name: loc.Name, ID: loc.Lid, ExtID: loc.ExtID}
		if loc.Crd != nil {
			stop.Position = &models.LatLng{
				Lat: float64(loc.Crd.Y) / 1e6,
				Lng: float64(loc.Crd.X) / 1e6,
			}
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

// TripSearch runs a journey search between the query's endpoints. Coordinate
// endpoints bypass location resolution entirely by using a coordinate lid.
func (c *Client) TripSearch(ctx context.Context, q transit.TripQuery) ([]models.Trip, error) {
	originLid := q.OriginID
	if q.Origin != nil {
		originLid = coordLid(*q.Origin)
	}
	destLid := q.DestinationID
	if q.Destination != nil {
		destLid = coordLid(*q.Destination)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultTripLimit
	}

	now := time.Now().In(c.loc)
	res, err := c.call(ctx, "TripSearch", map[string]any{
		"depLocL":     []map[string]any{{"lid": originLid}},
		"arrLocL":     []map[string]any{{"lid": destLid}},
		"outDate":     now.Format("20060102"),
		"outTime":     now.Format("150405"),
		"jnyFltrL":    []map[string]any{{"type": "PROD", "mode": "INC", "value": productFilterAll}},
		"numF":        limit,
		"getPasslist": false,
		"getPolyline": q.WithGeometry,
		"getTariff":   false,
		"ushrp":       true,
		"getPT":       true,
		"outFrwd":     true,
	})
	if err != nil {
		return nil, err
	}

	var search tripSearchRes
	if err := json.Unmarshal(res, &search); err != nil {
		return nil, fmt.Errorf("decoding TripSearch result: %w", err)
	}

	return c.normalizeTrips(&search), nil
}

// DepartureBoard fetches upcoming departures for one stop via StationBoard.
func (c *Client) DepartureBoard(ctx context.Context, q transit.DepartureQuery) ([]models.Departure, error) {
	window := q.WindowMinutes
	if window <= 0 {
		window = defaultBoardWindowMin
	}

	now := time.Now().In(c.loc)
	req := map[string]any{
		"stbLoc":   map[string]any{"lid": q.StopID},
		"type":     "DEP",
		"date":     now.Format("20060102"),
		"time":     now.Format("150405"),
		"dur":      window,
		"jnyFltrL": []map[string]any{{"type": "PROD", "mode": "INC", "value": productFilterAll}},
	}
	if q.DirectionID != "" {
		req["dirLoc"] = map[string]any{"lid": q.DirectionID}
	}

	res, err := c.call(ctx, "StationBoard", req)
	if err != nil {
		return nil, err
	}

	var board stationBoardRes
	if err := json.Unmarshal(res, &board); err != nil {
		return nil, fmt.Errorf("decoding StationBoard result: %w", err)
	}

	departures := make([]models.Departure, 0, len(board.JnyL))
	for _, jny := range board.JnyL {
		scheduled, err := parseTime(jny.Date, jny.StbStop.DTimeS, c.loc)
		if err != nil {
			// Board entries without a scheduled departure are unusable.
			continue
		}
		dep := models.Departure{
			Time:      models.TimePair{Scheduled: scheduled},
			Line:      productName(board.Common.ProdL, jny.ProdX),
			Direction: jny.DirTxt,
			Cancelled: jny.StbStop.DCncl,
		}
		if rt, err := parseTime(jny.Date, jny.StbStop.DTimeR, c.loc); err == nil {
			dep.Time.Realtime = &rt
		}
		departures = append(departures, dep)
	}
	return departures, nil
}

// coordLid synthesizes an address lid from raw coordinates, X = longitude and
// Y = latitude in microdegrees. This is the stable-ID fallback for map clicks.
func coordLid(p models.LatLng) string {
	return fmt.Sprintf("A=2@X=%d@Y=%d@", microdeg(p.Lng), microdeg(p.Lat))
}

func microdeg(deg float64) int {
	return int(math.Round(deg * 1e6))
}

func productName(prods oneOrMany[rawProduct], idx *int) string {
	if idx == nil || *idx < 0 || *idx >= len(prods) {
		return "?"
	}
	name := strings.TrimSpace(prods[*idx].Name)
	if name == "" {
		return "?"
	}
	return name
}
