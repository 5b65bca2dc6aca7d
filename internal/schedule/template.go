// Package schedule owns the half-hour grid: the canonical slot keys and the
// conversion between the stored schedule document and models.Schedule.
package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/models"
)

// SlotCount is the number of canonical slots (05:00 through 23:30)
const SlotCount = (constants.ScheduleLastHour - constants.ScheduleFirstHour + 1) * (60 / constants.SlotMinutes)

var canonical = buildKeys()

func buildKeys() []string {
	keys := make([]string, 0, SlotCount)
	for h := constants.ScheduleFirstHour; h <= constants.ScheduleLastHour; h++ {
		for m := 0; m < 60; m += constants.SlotMinutes {
			keys = append(keys, FormatMinutes(h*60+m))
		}
	}
	return keys
}

// Keys returns the canonical slot keys in ascending time order. The caller
// owns the returned slice.
func Keys() []string {
	out := make([]string, len(canonical))
	copy(out, canonical)
	return out
}

// IsKey reports whether k is one of the canonical keys
func IsKey(k string) bool {
	m, err := ParseMinutes(k)
	if err != nil || FormatMinutes(m) != k {
		return false
	}
	return m >= constants.ScheduleFirstHour*60 &&
		m <= constants.ScheduleLastHour*60+60-constants.SlotMinutes &&
		m%constants.SlotMinutes == 0
}

// Empty returns a schedule with every canonical key set to the empty slot
func Empty() models.Schedule {
	s := make(models.Schedule, SlotCount)
	for _, k := range canonical {
		s[k] = models.EmptySlot()
	}
	return s
}

// SlotEnd returns the time the slot starting at key ends, e.g. 23:30 -> 24:00
func SlotEnd(key string) (string, error) {
	m, err := ParseMinutes(key)
	if err != nil {
		return "", err
	}
	return FormatMinutes(m + constants.SlotMinutes), nil
}

// ParseMinutes converts HH:MM to minutes after midnight
func ParseMinutes(t string) (int, error) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time format %q, expected HH:MM", t)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", t, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", t, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time out of range: %q", t)
	}
	return h*60 + m, nil
}

// FormatMinutes converts minutes after midnight to HH:MM
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
