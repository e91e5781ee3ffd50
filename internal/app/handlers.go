package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"pendler.kildedal.dk/internal/metrics"
	"pendler.kildedal.dk/internal/models"
	"pendler.kildedal.dk/internal/polyline"
	"pendler.kildedal.dk/internal/report"
	"pendler.kildedal.dk/internal/transit"
)

// tripPayload is one rendering-ready trip in the /api/trips response. Bounds
// is the [[southLat, westLng], [northLat, eastLng]] rectangle covering the
// trip's geometry plus both endpoints, ready for the map view to fit.
type tripPayload struct {
	Index          int            `json:"index"`
	Departure      string         `json:"departure"`
	Arrival        string         `json:"arrival"`
	Duration       string         `json:"duration"`
	TransferCount  int            `json:"transferCount"`
	Cancelled      bool           `json:"cancelled"`
	DistanceMeters float64        `json:"distanceMeters"`
	Bounds         [2][2]float64  `json:"bounds"`
	Legs           []polyline.Leg `json:"legs"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// HealthStatus is the healthcheck response body.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Backend     string `json:"backend"`
	Ready       bool   `json:"ready"`
}

func (app *Application) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	ready := app.Planner != nil

	status := HealthStatus{
		Status:      "available",
		Environment: app.Config.Env,
		Version:     app.Version,
		Backend:     app.Config.Backend,
		Ready:       ready,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusInternalServerError
	}
	app.writeJSON(w, code, status)
}

// tripsHandler answers GET /api/trips?olat&olon&dlat&dlon with a JSON array
// of rendering-ready trips. Bad coordinates are a 400 and never reach the
// upstream; an upstream failure is a 500 for this request only. Trips whose
// legs yield no geometry are silently excluded.
func (app *Application) tripsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	origin, err1 := parsePoint(query.Get("olat"), query.Get("olon"))
	dest, err2 := parsePoint(query.Get("dlat"), query.Get("dlon"))
	if err1 != nil || err2 != nil {
		metrics.MapAPIRequests.WithLabelValues("400").Inc()
		app.writeJSON(w, http.StatusBadRequest, errorPayload{
			Error: "olat, olon, dlat and dlon must all be present and numeric",
		})
		return
	}

	trips, err := app.Planner.TripSearch(r.Context(), transit.TripQuery{
		Origin:       &origin,
		Destination:  &dest,
		Limit:        app.Config.TripLimit,
		WithGeometry: true,
	})
	if err != nil {
		metrics.MapAPIRequests.WithLabelValues("500").Inc()
		report.ReportErrorWithOptions(err, report.Options{
			Tags: map[string]string{"handler": "trips"},
			ExtraContext: map[string]interface{}{
				"origin":      fmt.Sprintf("%.6f,%.6f", origin.Lat, origin.Lng),
				"destination": fmt.Sprintf("%.6f,%.6f", dest.Lat, dest.Lng),
			},
		})
		app.Logger.Error("trip search failed", "error", err)
		app.writeJSON(w, http.StatusInternalServerError, errorPayload{
			Error: fmt.Sprintf("trip search failed: %v", err),
		})
		return
	}

	payload := make([]tripPayload, 0, len(trips))
	for _, trip := range trips {
		legs := polyline.Extract(trip, app.Palette)
		if len(legs) == 0 {
			metrics.TripsDiscarded.Inc()
			continue
		}

		var distance float64
		for _, leg := range legs {
			distance += polyline.Length(leg)
		}
		rect, _ := polyline.Bounds(legs, origin, dest)

		payload = append(payload, tripPayload{
			Index:          len(payload),
			Departure:      trip.Departure().Effective().Format("15:04"),
			Arrival:        trip.Arrival().Effective().Format("15:04"),
			Duration:       formatDuration(trip),
			TransferCount:  trip.TransferCount(),
			Cancelled:      trip.Cancelled(),
			DistanceMeters: distance,
			Bounds: [2][2]float64{
				{rect.Lo().Lat.Degrees(), rect.Lo().Lng.Degrees()},
				{rect.Hi().Lat.Degrees(), rect.Hi().Lng.Degrees()},
			},
			Legs: legs,
		})
	}

	metrics.TripsReturned.Set(float64(len(payload)))
	metrics.MapAPIRequests.WithLabelValues("200").Inc()
	app.writeJSON(w, http.StatusOK, payload)
}

func (app *Application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Error("failed to encode response", "error", err)
	}
}

func parsePoint(lat, lng string) (models.LatLng, error) {
	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("bad latitude %q: %w", lat, err)
	}
	lngF, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("bad longitude %q: %w", lng, err)
	}
	return models.LatLng{Lat: latF, Lng: lngF}, nil
}

func formatDuration(trip models.Trip) string {
	mins := int(trip.Duration().Minutes())
	if mins >= 60 {
		return fmt.Sprintf("%dh%02dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}
