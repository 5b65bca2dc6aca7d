package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/planner"
	"github.com/julianstephens/timebox/internal/schedule"
)

type fakeSender struct {
	texts []string
	err   error
}

func (f *fakeSender) Notify(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return f.err
}

func clockAt(hour, minute int) planner.Option {
	return planner.WithClock(func() time.Time {
		return time.Date(2024, 3, 1, hour, minute, 0, 0, time.Local)
	})
}

func saveSlot(t *testing.T, p *planner.Service, key string, slot models.Slot) {
	t.Helper()
	sched := schedule.Empty()
	sched[key] = slot
	if _, err := p.Save(context.Background(), models.Entry{Date: "2024-03-01", Schedule: sched}); err != nil {
		t.Fatal(err)
	}
}

func TestNotifyCmd(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		minute int
		slot   models.Slot
		expect []string
	}{
		{
			name:   "start one minute ahead",
			hour:   8, minute: 59,
			slot:   models.Slot{Task: "Standup", Color: models.DefaultColor},
			expect: []string{"09:00 Standup starts in 1 min"},
		},
		{
			name:   "end one minute ahead",
			hour: 9, minute: 29,
			slot:   models.Slot{Task: "Standup", Color: models.DefaultColor},
			expect: []string{"09:00 Standup ends in 1 min"},
		},
		{
			name: "two minutes ahead is not exact",
			hour: 8, minute: 58,
			slot: models.Slot{Task: "Standup", Color: models.DefaultColor},
		},
		{
			name: "checked slot gets no start reminder",
			hour: 8, minute: 59,
			slot: models.Slot{Task: "Standup", Checked: true, Color: models.DefaultColor},
		},
		{
			name: "empty slot is quiet",
			hour: 8, minute: 59,
			slot: models.EmptySlot(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupInitializedDB(t, clockAt(tt.hour, tt.minute))
			saveSlot(t, ctx.Planner, "09:00", tt.slot)

			sender := &fakeSender{}
			cmd := &NotifyCmd{Lead: time.Minute, Sender: sender}
			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("notify failed: %v", err)
			}
			if len(sender.texts) != len(tt.expect) {
				t.Fatalf("sent %q, want %q", sender.texts, tt.expect)
			}
			for i := range tt.expect {
				if sender.texts[i] != tt.expect[i] {
					t.Errorf("text[%d] = %q, want %q", i, sender.texts[i], tt.expect[i])
				}
			}
		})
	}
}

func TestNotifyCmd_DryRunSendsNothing(t *testing.T) {
	ctx, _ := setupInitializedDB(t, clockAt(8, 59))
	saveSlot(t, ctx.Planner, "09:00", models.Slot{Task: "Standup", Color: models.DefaultColor})

	sender := &fakeSender{}
	if err := (&NotifyCmd{DryRun: true, Lead: time.Minute, Sender: sender}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sender.texts) != 0 {
		t.Errorf("dry run sent %q", sender.texts)
	}
}

func TestNotifyCmd_SendFailureIsNotFatal(t *testing.T) {
	ctx, _ := setupInitializedDB(t, clockAt(8, 59))
	saveSlot(t, ctx.Planner, "09:00", models.Slot{Task: "Standup", Color: models.DefaultColor})

	sender := &fakeSender{err: errors.New("tray not running")}
	if err := (&NotifyCmd{Lead: time.Minute, Sender: sender}).Run(ctx); err != nil {
		t.Errorf("a failed notification should not fail the command: %v", err)
	}
}
