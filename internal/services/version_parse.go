package services

import (
	"strconv"
	"strings"
	"time"
)

// parseVersionTimestamp interprets the leading YYYY.MM.DD[.HH] segments of a
// version token as a UTC instant. Returns false when the segments are absent,
// non-numeric or out of range.
func parseVersionTimestamp(version string) (time.Time, bool) {
	parts := strings.Split(version, ".")
	if len(parts) < 3 {
		return time.Time{}, false
	}

	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	hour := 0
	var err4 error
	if len(parts) >= 4 {
		hour, err4 = strconv.Atoi(parts[3])
	}
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC), true
}
