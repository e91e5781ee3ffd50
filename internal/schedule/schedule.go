// Package schedule holds the pure timing logic: reconciling scheduled and
// realtime data into effective times, and turning an effective departure into
// a leave-by plan.
package schedule

import (
	"math"
	"time"

	"pendler.kildedal.dk/internal/models"
)

// DelayClass classifies a departure against its schedule.
type DelayClass int

const (
	// NoRealtimeData means the upstream sent no realtime prediction at all.
	NoRealtimeData DelayClass = iota
	// OnTime covers realtime at or before the scheduled time.
	OnTime
	// MinorDelay is a positive delay of at most three minutes.
	MinorDelay
	// MajorDelay is anything later than that.
	MajorDelay
)

// minorDelayMax is the boundary between a shrug and a problem.
const minorDelayMax = 3 * time.Minute

// Delay is the classification of a TimePair. Minutes is the delay rounded up
// to whole minutes, so a MajorDelay never reports a minute count that would
// read as minor; it is zero for OnTime and NoRealtimeData.
type Delay struct {
	Class   DelayClass
	Minutes int
}

// Reconcile merges a scheduled/realtime pair into the effective event time and
// its delay classification. Classification always compares realtime against
// scheduled, never against the effective value. Realtime exactly equal to
// scheduled is OnTime: presence of the field is what gates NoRealtimeData.
func Reconcile(tp models.TimePair) (time.Time, Delay) {
	if tp.Realtime == nil {
		return tp.Scheduled, Delay{Class: NoRealtimeData}
	}
	diff := tp.Realtime.Sub(tp.Scheduled)
	switch {
	case diff <= 0:
		return *tp.Realtime, Delay{Class: OnTime}
	case diff <= minorDelayMax:
		return *tp.Realtime, Delay{Class: MinorDelay, Minutes: ceilMinutes(diff)}
	default:
		return *tp.Realtime, Delay{Class: MajorDelay, Minutes: ceilMinutes(diff)}
	}
}

func ceilMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}

// Options are the traveler's constants: how long the walk to the station
// takes and how long they are willing to stand on the platform.
type Options struct {
	WalkTime       time.Duration
	MaxStationWait time.Duration
}

// DefaultOptions matches the commute this tool was built for: a seven minute
// walk and at most two minutes on the platform.
func DefaultOptions() Options {
	return Options{WalkTime: 7 * time.Minute, MaxStationWait: 2 * time.Minute}
}

// LeaveBy is the plan derived from one effective departure: when to leave,
// when that puts the traveler at the station, and how long they will actually
// wait there. StationWaitMinutes can go negative when a realtime update moved
// the departure earlier than the schedule the lead time was based on; that is
// a displayable state, not an error.
type LeaveBy struct {
	LeaveAt            time.Time
	AtStation          time.Time
	StationWaitMinutes int
}

// ComputeSchedule derives the leave-by plan for an effective departure.
// AtStation-LeaveAt always equals opts.WalkTime; the station wait is
// recomputed from the effective departure rather than assumed to be
// opts.MaxStationWait, because delays shift the two apart.
func ComputeSchedule(effectiveDeparture time.Time, opts Options) LeaveBy {
	leaveAt := effectiveDeparture.Add(-(opts.WalkTime + opts.MaxStationWait))
	atStation := leaveAt.Add(opts.WalkTime)
	wait := int(math.Round(effectiveDeparture.Sub(atStation).Minutes()))
	return LeaveBy{LeaveAt: leaveAt, AtStation: atStation, StationWaitMinutes: wait}
}

// Urgency classifies a leave-by time against the current wall clock.
type Urgency int

const (
	// Comfortable means five or more minutes of slack.
	Comfortable Urgency = iota
	// Urgent means the traveler has to move now.
	Urgent
	// Past means the window is already missed.
	Past
)

// urgentWindow is how much slack still counts as "drop everything".
const urgentWindow = 5 * time.Minute

// ClassifyUrgency is a pure function of the caller-supplied now; it must be
// evaluated at render time, never cached.
func ClassifyUrgency(leaveAt, now time.Time) Urgency {
	slack := leaveAt.Sub(now)
	switch {
	case slack < 0:
		return Past
	case slack < urgentWindow:
		return Urgent
	default:
		return Comfortable
	}
}
