package reminder

import (
	"testing"
	"time"

	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/schedule"
)

func at(h, m, s int) time.Time {
	return time.Date(2024, 3, 1, h, m, s, 0, time.Local)
}

func TestDue(t *testing.T) {
	sched := schedule.Empty()
	sched["09:00"] = models.Slot{Task: "Standup", Color: models.DefaultColor}
	sched["09:30"] = models.Slot{Task: "Review", Checked: true, Color: models.DefaultColor}
	sched["23:30"] = models.Slot{Task: "Wind down", Color: models.DefaultColor}

	tests := []struct {
		name  string
		date  string
		now   time.Time
		lead  time.Duration
		wantN int
		first Kind
		key   string
	}{
		{"one minute before start", "2024-03-01", at(8, 59, 0), time.Minute, 1, KindStart, "09:00"},
		{"seconds are ignored", "2024-03-01", at(8, 59, 45), time.Minute, 1, KindStart, "09:00"},
		{"at start", "2024-03-01", at(9, 0, 0), time.Minute, 1, KindStart, "09:00"},
		{"too early", "2024-03-01", at(8, 58, 0), time.Minute, 0, KindStart, ""},
		{"end of slot, checked neighbour gets no start", "2024-03-01", at(9, 29, 0), time.Minute, 1, KindEnd, "09:00"},
		{"checked slot still ends", "2024-03-01", at(9, 59, 0), time.Minute, 1, KindEnd, "09:30"},
		{"last slot ends at midnight", "2024-03-01", at(23, 59, 0), time.Minute, 1, KindEnd, "23:30"},
		{"other date", "2024-03-02", at(8, 59, 0), time.Minute, 0, KindStart, ""},
		{"wide lead", "2024-03-01", at(8, 30, 0), time.Hour, 2, KindStart, "09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Due(tt.date, sched, tt.now, tt.lead)
			if len(got) != tt.wantN {
				t.Fatalf("Due() returned %d reminders, want %d: %+v", len(got), tt.wantN, got)
			}
			if tt.wantN == 0 {
				return
			}
			if got[0].Kind != tt.first || got[0].Key != tt.key {
				t.Errorf("first reminder = %s %s, want %s %s", got[0].Key, got[0].Kind, tt.key, tt.first)
			}
		})
	}
}

func TestDueSkipsEmptySlots(t *testing.T) {
	if got := Due("2024-03-01", schedule.Empty(), at(8, 59, 0), time.Hour); len(got) != 0 {
		t.Errorf("Due() on empty grid = %+v", got)
	}
}

func TestExactly(t *testing.T) {
	sched := schedule.Empty()
	sched["09:00"] = models.Slot{Task: "Standup", Color: models.DefaultColor}

	due := Due("2024-03-01", sched, at(9, 0, 0), time.Minute)
	if len(Exactly(due, time.Minute)) != 0 {
		t.Error("a reminder at distance 0 must not fire for a 1 minute lead")
	}
	due = Due("2024-03-01", sched, at(8, 59, 10), time.Minute)
	if len(Exactly(due, time.Minute)) != 1 {
		t.Error("expected the 1 minute reminder to fire")
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		r    Reminder
		want string
	}{
		{Reminder{Key: "09:00", Task: "Standup", Kind: KindStart, In: time.Minute}, "09:00 Standup starts in 1 min"},
		{Reminder{Key: "09:00", Task: "Standup", Kind: KindEnd, In: 0}, "09:00 Standup ends now"},
		{Reminder{Key: "09:00", Task: "Standup", Kind: KindStart, In: 5 * time.Minute}, "09:00 Standup starts in 5 min"},
	}
	for _, tt := range tests {
		if got := tt.r.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	r := Reminder{Date: "2024-03-01", Key: "09:00", Kind: KindStart}

	if got := tr.Fresh([]Reminder{r}); len(got) != 1 {
		t.Fatal("first delivery should pass")
	}
	if got := tr.Fresh([]Reminder{r}); len(got) != 0 {
		t.Error("duplicate should be dropped")
	}
	end := r
	end.Kind = KindEnd
	if got := tr.Fresh([]Reminder{end}); len(got) != 1 {
		t.Error("end reminder is distinct from start")
	}

	next := Reminder{Date: "2024-03-02", Key: "09:00", Kind: KindStart}
	if got := tr.Fresh([]Reminder{next}); len(got) != 1 {
		t.Error("new date should pass")
	}
	if got := tr.Fresh([]Reminder{r}); len(got) != 1 {
		t.Error("old date should have been forgotten")
	}
}
