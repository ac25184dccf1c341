package service

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// Helpers for the minutes-since-midnight arithmetic all schedule evaluation
// runs on. Everything operates in the local wall-clock day.

func dayOf(t time.Time) string {
	return t.Format(entity.DateLayout)
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// parseClockMinutes converts an HH:MM string to minutes since midnight.
func parseClockMinutes(clockTime string) (int, error) {
	parts := strings.Split(clockTime, ":")
	if len(parts) != 2 {
		return 0, errorvalues.ErrBadClockTime
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, errorvalues.ErrBadClockTime
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, errorvalues.ErrBadClockTime
	}
	return hours*60 + minutes, nil
}

func parseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(entity.DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, errors.Join(errorvalues.ErrBadDate, err)
	}
	return t, nil
}

// normalizeTimes dedupes and sorts dose slots ascending by clock value.
func normalizeTimes(times []string) []string {
	seen := make(map[string]struct{}, len(times))
	out := make([]string, 0, len(times))
	for _, t := range times {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	// HH:MM strings with zero padding sort correctly as text.
	sort.Strings(out)
	return out
}
