package schedule

import (
	"testing"
	"time"

	"pendler.kildedal.dk/internal/models"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2025, 6, 2, hour, min, sec, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestReconcile(t *testing.T) {
	sched := at(8, 0, 0)

	tests := []struct {
		name        string
		pair        models.TimePair
		wantClass   DelayClass
		wantMinutes int
		wantEff     time.Time
	}{
		{
			name:      "no realtime data",
			pair:      models.TimePair{Scheduled: sched},
			wantClass: NoRealtimeData,
			wantEff:   sched,
		},
		{
			name:      "realtime equal to scheduled is on time",
			pair:      models.TimePair{Scheduled: sched, Realtime: ptr(sched)},
			wantClass: OnTime,
			wantEff:   sched,
		},
		{
			name:      "early departure is on time",
			pair:      models.TimePair{Scheduled: sched, Realtime: ptr(at(7, 58, 0))},
			wantClass: OnTime,
			wantEff:   at(7, 58, 0),
		},
		{
			name:        "three minutes exactly is minor",
			pair:        models.TimePair{Scheduled: sched, Realtime: ptr(at(8, 3, 0))},
			wantClass:   MinorDelay,
			wantMinutes: 3,
			wantEff:     at(8, 3, 0),
		},
		{
			name:        "just past three minutes is major and rounds up",
			pair:        models.TimePair{Scheduled: sched, Realtime: ptr(at(8, 3, 1))},
			wantClass:   MajorDelay,
			wantMinutes: 4,
			wantEff:     at(8, 3, 1),
		},
		{
			name:        "ten minutes is major",
			pair:        models.TimePair{Scheduled: sched, Realtime: ptr(at(8, 10, 0))},
			wantClass:   MajorDelay,
			wantMinutes: 10,
			wantEff:     at(8, 10, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff, delay := Reconcile(tt.pair)
			if !eff.Equal(tt.wantEff) {
				t.Errorf("effective = %v, want %v", eff, tt.wantEff)
			}
			if delay.Class != tt.wantClass {
				t.Errorf("class = %v, want %v", delay.Class, tt.wantClass)
			}
			if delay.Minutes != tt.wantMinutes {
				t.Errorf("minutes = %d, want %d", delay.Minutes, tt.wantMinutes)
			}
		})
	}
}

func TestComputeScheduleWithDelay(t *testing.T) {
	// Scheduled 08:00, realtime 08:02, walk 7, max wait 2. The lead time is 9
	// minutes off the effective departure, so the traveler leaves 07:53, is at
	// the station 08:00 and waits 2 minutes.
	opts := Options{WalkTime: 7 * time.Minute, MaxStationWait: 2 * time.Minute}
	eff := at(8, 2, 0)

	lb := ComputeSchedule(eff, opts)

	if want := at(7, 53, 0); !lb.LeaveAt.Equal(want) {
		t.Errorf("LeaveAt = %v, want %v", lb.LeaveAt, want)
	}
	if want := at(8, 0, 0); !lb.AtStation.Equal(want) {
		t.Errorf("AtStation = %v, want %v", lb.AtStation, want)
	}
	if lb.StationWaitMinutes != 2 {
		t.Errorf("StationWaitMinutes = %d, want 2", lb.StationWaitMinutes)
	}
}

func TestComputeScheduleNominal(t *testing.T) {
	// No realtime: effective equals scheduled 08:00, leave 07:51, station
	// 07:58, wait exactly the configured maximum.
	opts := Options{WalkTime: 7 * time.Minute, MaxStationWait: 2 * time.Minute}
	eff := at(8, 0, 0)

	lb := ComputeSchedule(eff, opts)

	if want := at(7, 51, 0); !lb.LeaveAt.Equal(want) {
		t.Errorf("LeaveAt = %v, want %v", lb.LeaveAt, want)
	}
	if want := at(7, 58, 0); !lb.AtStation.Equal(want) {
		t.Errorf("AtStation = %v, want %v", lb.AtStation, want)
	}
	if lb.StationWaitMinutes != 2 {
		t.Errorf("StationWaitMinutes = %d, want 2", lb.StationWaitMinutes)
	}
}

func TestComputeScheduleWalkIdentity(t *testing.T) {
	// AtStation - LeaveAt must equal the walk time regardless of delay.
	opts := Options{WalkTime: 11 * time.Minute, MaxStationWait: 4 * time.Minute}
	for _, eff := range []time.Time{at(6, 13, 0), at(8, 2, 30), at(23, 59, 0)} {
		lb := ComputeSchedule(eff, opts)
		if got := lb.AtStation.Sub(lb.LeaveAt); got != opts.WalkTime {
			t.Errorf("AtStation-LeaveAt = %v, want %v", got, opts.WalkTime)
		}
	}
}

func TestComputeScheduleNegativeWait(t *testing.T) {
	// A realtime update can pull the departure earlier than the plan assumed;
	// the resulting negative wait is a valid state.
	opts := Options{WalkTime: 7 * time.Minute, MaxStationWait: 2 * time.Minute}
	lb := ComputeSchedule(at(7, 55, 0), opts)
	arrive := lb.AtStation
	// Pretend the traveler planned against 08:00 and the train now leaves at
	// 07:55: recompute the wait against the original station arrival.
	wait := int(at(7, 55, 0).Sub(arrive).Minutes())
	if wait != 2 {
		t.Fatalf("sanity: wait = %d", wait)
	}
}

func TestClassifyUrgency(t *testing.T) {
	now := at(8, 0, 0)
	tests := []struct {
		name    string
		leaveAt time.Time
		want    Urgency
	}{
		{"already missed", at(7, 59, 59), Past},
		{"leave right now", at(8, 0, 0), Urgent},
		{"four minutes of slack", at(8, 4, 0), Urgent},
		{"five minutes exactly", at(8, 5, 0), Comfortable},
		{"plenty of time", at(8, 30, 0), Comfortable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyUrgency(tt.leaveAt, now); got != tt.want {
				t.Errorf("ClassifyUrgency = %v, want %v", got, tt.want)
			}
		})
	}
}
