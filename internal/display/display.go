// Package display renders search results, departure boards and the leave-by
// table to a terminal. Coloring uses raw ANSI escapes, same as the rest of
// this tool's output; colors encode urgency and delay severity.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pendler.kildedal.dk/internal/models"
	"pendler.kildedal.dk/internal/schedule"
)

const (
	green  = "\033[92m"
	yellow = "\033[93m"
	red    = "\033[91m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	reset  = "\033[0m"
)

// RenderStops lists location search results with their stable IDs.
func RenderStops(w io.Writer, query string, stops []models.Stop) {
	fmt.Fprintf(w, "\nSearch results for %q:\n", query)
	if len(stops) == 0 {
		fmt.Fprintf(w, "  %snothing found%s\n", yellow, reset)
		return
	}
	for _, stop := range stops {
		fmt.Fprintf(w, "  %-40s id: %s\n", stop.Name, stop.ID)
		if stop.ExtID != "" {
			fmt.Fprintf(w, "  %40s extId: %s\n", "", stop.ExtID)
		}
		if stop.Position != nil {
			fmt.Fprintf(w, "  %40s at: %.6f, %.6f\n", "", stop.Position.Lat, stop.Position.Lng)
		}
	}
}

// RenderTrips prints the leave-by table for the commute.
func RenderTrips(w io.Writer, origin, dest models.Stop, trips []models.Trip, opts schedule.Options, now time.Time) {
	walk := int(opts.WalkTime.Minutes())
	maxWait := int(opts.MaxStationWait.Minutes())

	fmt.Fprintf(w, "\n%s=== %s → %s ===%s\n", bold, origin.Name, dest.Name, reset)
	fmt.Fprintf(w, "%sWalk to station: %d min | Max station wait: %d min%s\n\n", dim, walk, maxWait, reset)

	if len(trips) == 0 {
		fmt.Fprintf(w, "%sNo trips found%s\n", yellow, reset)
		return
	}

	fmt.Fprintf(w, "%s%-3s %-14s %-12s %-12s %-12s %-6s %-8s %-5s %s%s\n",
		bold, "#", "Leave office", "At station", "Depart", "Arrive", "Wait", "Dur", "Chg", "Status", reset)
	fmt.Fprintln(w, strings.Repeat("─", 95))

	for i, trip := range trips {
		effDep, depDelay := schedule.Reconcile(trip.Departure())
		leaveBy := schedule.ComputeSchedule(effDep, opts)

		var leaveColor, leaveNote string
		switch schedule.ClassifyUrgency(leaveBy.LeaveAt, now) {
		case schedule.Past:
			leaveColor, leaveNote = red, " (past)"
		case schedule.Urgent:
			leaveColor, leaveNote = yellow, " (!)"
		default:
			leaveColor, leaveNote = green, ""
		}

		status := delayLabel(depDelay)
		if trip.Cancelled() {
			status = red + "CANCELLED" + reset
		}

		fmt.Fprintf(w, "%-3d %s%s%s%s%-7s %-12s %-12s %-12s %-6s %-8s %-5d %s\n",
			i+1,
			leaveColor, bold, clock(leaveBy.LeaveAt), reset, leaveNote,
			clock(leaveBy.AtStation),
			timeRange(trip.Departure()),
			timeRange(trip.Arrival()),
			fmt.Sprintf("%dm", leaveBy.StationWaitMinutes),
			duration(trip.Duration()),
			trip.TransferCount(),
			status,
		)

		if summary := legSummary(trip); summary != "" {
			fmt.Fprintf(w, "    %s→ %s%s\n", dim, summary, reset)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%sUpdated: %s | Walk: %d min | Max station wait: %d min | Leave %d min before departure%s\n",
		dim, now.Format("15:04:05"), walk, maxWait, walk+maxWait, reset)
}

// RenderDepartures prints a departure board.
func RenderDepartures(w io.Writer, stop models.Stop, deps []models.Departure, now time.Time) {
	fmt.Fprintf(w, "\n%sDepartures from %s%s\n\n", bold, stop.Name, reset)
	if len(deps) == 0 {
		fmt.Fprintf(w, "  %sno departures found%s\n", yellow, reset)
		return
	}
	for _, dep := range deps {
		_, delay := schedule.Reconcile(dep.Time)
		status := delayLabel(delay)
		if dep.Cancelled {
			status = red + "CANCELLED" + reset
		}
		fmt.Fprintf(w, "  %-16s %-15s %-30s %s\n", timeRange(dep.Time), dep.Line, dep.Direction, status)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%sUpdated: %s%s\n", dim, now.Format("15:04:05"), reset)
}

// delayLabel colors a delay classification for table output.
func delayLabel(d schedule.Delay) string {
	switch d.Class {
	case schedule.NoRealtimeData:
		return dim + "(no RT)" + reset
	case schedule.OnTime:
		return green + "on time" + reset
	case schedule.MinorDelay:
		return fmt.Sprintf("%s+%d min%s", yellow, d.Minutes, reset)
	default:
		return fmt.Sprintf("%s+%d min%s", red, d.Minutes, reset)
	}
}

// timeRange shows "08:00" or "08:00→08:02" when realtime diverges from the
// schedule.
func timeRange(tp models.TimePair) string {
	s := clock(tp.Scheduled)
	if tp.Realtime != nil && !tp.Realtime.Equal(tp.Scheduled) {
		return s + "→" + clock(*tp.Realtime)
	}
	return s
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

// duration renders "45m" below an hour and "1h05m" above.
func duration(d time.Duration) string {
	mins := int(d.Minutes())
	if mins >= 60 {
		return fmt.Sprintf("%dh%02dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}

func legSummary(trip models.Trip) string {
	parts := make([]string, 0, len(trip.Legs))
	for _, leg := range trip.Legs {
		parts = append(parts, leg.Name)
	}
	return strings.Join(parts, " → ")
}
