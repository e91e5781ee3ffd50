package models

import "time"

// LatLng is a geographic coordinate pair, latitude first. All coordinate data
// inside this application uses this order; conversion from lon-first upstream
// encodings happens once at the ingestion boundary.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stop is a named transit location with a resolvable identifier.
// ID is the upstream's stable identifier (a HAFAS lid or an OBA stop ID);
// for coordinate-only endpoints it may be a synthesized coordinate lid.
// ExtID is the short public stop number shown to riders, when known.
type Stop struct {
	Name     string
	ID       string
	ExtID    string
	Position *LatLng
}

// TimePair carries the scheduled time of an event together with the realtime
// prediction for it, when the upstream has one. Realtime equal to Scheduled is
// still realtime data; absence of the field is what "no RT" means.
type TimePair struct {
	Scheduled time.Time
	Realtime  *time.Time
}

// Effective returns the best-known actual time: realtime if present, else
// scheduled. All leave-by and duration arithmetic uses effective times.
func (tp TimePair) Effective() time.Time {
	if tp.Realtime != nil {
		return *tp.Realtime
	}
	return tp.Scheduled
}

// LegKind distinguishes a transit ride from a walk segment.
type LegKind string

const (
	LegTransit LegKind = "transit"
	LegWalk    LegKind = "walk"
)

// Leg is one contiguous segment of a trip, first-to-last ordered within its
// Trip. Departure is the origin-side time pair, Arrival the destination-side
// one. Path holds the leg's geometry when the trip search requested it.
type Leg struct {
	Kind               LegKind
	Name               string
	Departure          TimePair
	Arrival            TimePair
	DepartureCancelled bool
	ArrivalCancelled   bool
	Path               []LatLng
}

// Trip is an ordered sequence of legs describing one itinerary. A Trip always
// has at least one leg; the normalizer discards raw records that would produce
// an empty one. Trips are immutable once built.
type Trip struct {
	Legs []Leg
}

// First returns the first leg. Callers rely on the ≥1 leg invariant.
func (t Trip) First() Leg { return t.Legs[0] }

// Last returns the final leg.
func (t Trip) Last() Leg { return t.Legs[len(t.Legs)-1] }

// Departure is the origin-side time pair of the whole itinerary.
func (t Trip) Departure() TimePair { return t.First().Departure }

// Arrival is the destination-side time pair of the whole itinerary.
func (t Trip) Arrival() TimePair { return t.Last().Arrival }

// TransferCount derives the number of changes from the legs: one less than the
// number of transit legs, clamped to zero. Walk legs never count. Derived on
// every call so it cannot drift from the legs themselves.
func (t Trip) TransferCount() int {
	transit := 0
	for _, leg := range t.Legs {
		if leg.Kind == LegTransit {
			transit++
		}
	}
	if transit <= 1 {
		return 0
	}
	return transit - 1
}

// Cancelled reports whether the itinerary is unusable for boarding or
// alighting: the first leg's origin side or the last leg's destination side is
// cancelled. Intermediate-leg cancellations are deliberately not folded in.
func (t Trip) Cancelled() bool {
	return t.First().DepartureCancelled || t.Last().ArrivalCancelled
}

// Duration is the effective travel time of the itinerary.
func (t Trip) Duration() time.Duration {
	return t.Arrival().Effective().Sub(t.Departure().Effective())
}

// Departure board entry for a single stop.
type Departure struct {
	Time      TimePair
	Line      string
	Direction string
	Cancelled bool
}
