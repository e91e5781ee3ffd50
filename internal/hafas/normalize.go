package hafas

import (
	"fmt"

	"pendler.kildedal.dk/internal/models"
)

// normalizeTrips turns raw connections into domain trips. Records that cannot
// yield a usable trip are dropped here, silently: a malformed connection is
// contained to itself and never aborts the batch.
func (c *Client) normalizeTrips(res *tripSearchRes) []models.Trip {
	trips := make([]models.Trip, 0, len(res.OutConL))
	for _, conn := range res.OutConL {
		trip, ok := c.normalizeTrip(conn, res.Common.ProdL)
		if !ok {
			continue
		}
		trips = append(trips, trip)
	}
	return trips
}

// normalizeTrip builds one Trip from a raw connection. It returns ok=false
// when the connection has no resolvable legs, or when the first leg lacks a
// scheduled departure or the last leg a scheduled arrival.
func (c *Client) normalizeTrip(conn rawConnection, prods oneOrMany[rawProduct]) (models.Trip, bool) {
	legs := make([]models.Leg, 0, len(conn.SecL))
	for _, sec := range conn.SecL {
		leg, ok := c.normalizeSection(conn.Date, sec, prods)
		if !ok {
			continue
		}
		legs = append(legs, leg)
	}
	if len(legs) == 0 {
		return models.Trip{}, false
	}

	// Section-level events can be sparse; backfill the trip's own endpoints
	// from the connection-level summary before judging usability.
	first := &legs[0]
	if first.Departure.Scheduled.IsZero() {
		first.Departure = c.timePair(conn.Date, conn.Dep.DTimeS, conn.Dep.DTimeR)
	}
	first.DepartureCancelled = first.DepartureCancelled || conn.Dep.DCncl

	last := &legs[len(legs)-1]
	if last.Arrival.Scheduled.IsZero() {
		last.Arrival = c.timePair(conn.Date, conn.Arr.ATimeS, conn.Arr.ATimeR)
	}
	last.ArrivalCancelled = last.ArrivalCancelled || conn.Arr.ACncl

	if first.Departure.Scheduled.IsZero() || last.Arrival.Scheduled.IsZero() {
		return models.Trip{}, false
	}

	return models.Trip{Legs: legs}, true
}

// normalizeSection maps one raw section onto a Leg. JNY sections become
// transit legs named after their product; WALK and TRSF sections become walk
// legs. Unknown section types are skipped.
func (c *Client) normalizeSection(date string, sec rawSection, prods oneOrMany[rawProduct]) (models.Leg, bool) {
	leg := models.Leg{
		Departure:          c.timePair(date, sec.Dep.DTimeS, sec.Dep.DTimeR),
		Arrival:            c.timePair(date, sec.Arr.ATimeS, sec.Arr.ATimeR),
		DepartureCancelled: sec.Dep.DCncl,
		ArrivalCancelled:   sec.Arr.ACncl,
	}

	switch sec.Type {
	case "JNY":
		leg.Kind = models.LegTransit
		leg.Name = "?"
		if sec.Jny != nil {
			leg.Name = productName(prods, sec.Jny.ProdX)
			if sec.Jny.Poly != nil {
				leg.Path = convertPath(sec.Jny.Poly.Crd)
			}
		}
	case "WALK":
		leg.Kind = models.LegWalk
		leg.Name = "Walk"
		if sec.Gis != nil {
			if mins, ok := parseGisDuration(sec.Gis.DurS); ok {
				leg.Name = fmt.Sprintf("Walk %dm", mins)
			}
			if sec.Gis.Poly != nil {
				leg.Path = convertPath(sec.Gis.Poly.Crd)
			}
		}
	case "TRSF":
		leg.Kind = models.LegWalk
		leg.Name = "Transfer"
	default:
		return models.Leg{}, false
	}

	return leg, true
}

// timePair parses a scheduled/realtime string pair; an unparsable realtime
// value degrades to schedule-only rather than killing the leg.
func (c *Client) timePair(date, scheduled, realtime string) models.TimePair {
	pair := models.TimePair{}
	if t, err := parseTime(date, scheduled, c.loc); err == nil {
		pair.Scheduled = t
	}
	if t, err := parseTime(date, realtime, c.loc); err == nil {
		pair.Realtime = &t
	}
	return pair
}

// convertPath swaps the upstream's [lon, lat] pairs into lat-first LatLng.
// This is the only place the lon-first convention exists.
func convertPath(crd [][]float64) []models.LatLng {
	if len(crd) == 0 {
		return nil
	}
	path := make([]models.LatLng, 0, len(crd))
	for _, pair := range crd {
		if len(pair) < 2 {
			continue
		}
		path = append(path, models.LatLng{Lat: pair[1], Lng: pair[0]})
	}
	return path
}
