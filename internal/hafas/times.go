package hafas

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseTime turns a HAFAS date ("20250602") and time ("081500") into a
// concrete time. Times that cross midnight carry a day-offset prefix like
// "1d012300"; short values are padded with trailing zeros to six digits.
func parseTime(date, value string, loc *time.Location) (time.Time, error) {
	if date == "" || value == "" {
		return time.Time{}, fmt.Errorf("empty date or time")
	}

	dayOffset := 0
	if idx := strings.Index(value, "d"); idx >= 0 {
		offset, err := strconv.Atoi(value[:idx])
		if err != nil {
			return time.Time{}, fmt.Errorf("bad day offset in %q: %w", value, err)
		}
		dayOffset = offset
		value = value[idx+1:]
	}
	for len(value) < 6 {
		value += "0"
	}

	t, err := time.ParseInLocation("20060102150405", date+value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad HAFAS time %q: %w", date+value, err)
	}
	return t.AddDate(0, 0, dayOffset), nil
}

// parseGisDuration decodes a gis segment duration like "001200" (HHMMSS) into
// whole minutes.
func parseGisDuration(value string) (int, bool) {
	if len(value) < 4 {
		return 0, false
	}
	hours, err1 := strconv.Atoi(value[:2])
	mins, err2 := strconv.Atoi(value[2:4])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return hours*60 + mins, true
}
