// Package reminder computes advisory slot start and end reminders. It only
// reads schedules; nothing here touches the store.
package reminder

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/schedule"
)

type Kind int

const (
	KindStart Kind = iota
	KindEnd
)

func (k Kind) String() string {
	if k == KindEnd {
		return "end"
	}
	return "start"
}

type Reminder struct {
	Date string
	Key  string
	Kind Kind
	Task string
	// At is the slot boundary the reminder is about
	At time.Time
	// In is the whole-minute distance from now to At
	In time.Duration
}

// Text renders the reminder for a banner or desktop notification.
func (r Reminder) Text() string {
	verb := "starts"
	if r.Kind == KindEnd {
		verb = "ends"
	}
	mins := int(r.In / time.Minute)
	switch mins {
	case 0:
		return fmt.Sprintf("%s %s %s now", r.Key, r.Task, verb)
	case 1:
		return fmt.Sprintf("%s %s %s in 1 min", r.Key, r.Task, verb)
	default:
		return fmt.Sprintf("%s %s %s in %d min", r.Key, r.Task, verb, mins)
	}
}

// Due returns the reminders whose boundary lies within lead of now. Only
// slots with a task on now's own date count, and checked slots get no start
// reminder. Results are ordered by time, starts before ends.
func Due(date string, sched models.Schedule, now time.Time, lead time.Duration) []Reminder {
	if now.Format(constants.DateFormat) != date {
		return nil
	}

	now = now.Truncate(time.Minute)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var out []Reminder
	for _, key := range schedule.Keys() {
		slot, ok := sched[key]
		if !ok || slot.Task == "" {
			continue
		}

		startMin, err := schedule.ParseMinutes(key)
		if err != nil {
			continue
		}
		start := midnight.Add(time.Duration(startMin) * time.Minute)
		end := start.Add(constants.SlotMinutes * time.Minute)

		if !slot.Checked {
			if d := start.Sub(now); d >= 0 && d <= lead {
				out = append(out, Reminder{Date: date, Key: key, Kind: KindStart, Task: slot.Task, At: start, In: d})
			}
		}
		if d := end.Sub(now); d >= 0 && d <= lead {
			out = append(out, Reminder{Date: date, Key: key, Kind: KindEnd, Task: slot.Task, At: end, In: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Exactly keeps the reminders exactly lead away. A cron job that runs once a
// minute uses it so each boundary fires once without remembering state.
func Exactly(rs []Reminder, lead time.Duration) []Reminder {
	var out []Reminder
	for _, r := range rs {
		if r.In == lead.Truncate(time.Minute) {
			out = append(out, r)
		}
	}
	return out
}

type trackKey struct {
	date string
	key  string
	kind Kind
}

// Tracker drops reminders that were already delivered. Safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	seen map[trackKey]bool
}

func NewTracker() *Tracker {
	return &Tracker{seen: make(map[trackKey]bool)}
}

// Fresh returns the reminders not seen before and marks them seen. Entries
// for other dates are forgotten.
func (t *Tracker) Fresh(rs []Reminder) []Reminder {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Reminder
	for _, r := range rs {
		for k := range t.seen {
			if k.date != r.Date {
				delete(t.seen, k)
			}
		}
		k := trackKey{date: r.Date, key: r.Key, kind: r.Kind}
		if t.seen[k] {
			continue
		}
		t.seen[k] = true
		out = append(out, r)
	}
	return out
}
