package models

import (
	"strings"
	"time"

	"github.com/julianstephens/timebox/internal/constants"
)

// ParseDate parses a YYYY-MM-DD date in the local time zone
func ParseDate(d string) (time.Time, error) {
	return time.ParseInLocation(constants.DateFormat, strings.TrimSpace(d), time.Local)
}

// FirstLine returns the first non-blank line of s, trimmed
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// TaskOptions lists the non-blank lines of the priorities and the brain dump,
// in that order and without duplicates. Both surfaces offer them as task
// suggestions for a slot.
func TaskOptions(topPriorities, brainDump string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, block := range []string{topPriorities, brainDump} {
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			out = append(out, line)
		}
	}
	return out
}
