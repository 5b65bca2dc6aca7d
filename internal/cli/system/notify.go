package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/notifier"
	"github.com/julianstephens/timebox/internal/reminder"
)

// NotifyCmd is meant to run from cron once a minute. It only fires for slot
// boundaries exactly Lead away, so repeated runs never repeat a reminder.
type NotifyCmd struct {
	DryRun bool          `help:"Print notifications to stdout instead of sending them."`
	Lead   time.Duration `help:"How long before a slot boundary to notify." default:"1m"`

	// Sender overrides the tray notifier.
	Sender notifier.Sender `kong:"-"`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now := ctx.Planner.Now()
	today := now.Format(constants.DateFormat)

	entry, err := ctx.Planner.Load(bg, today)
	if err != nil {
		return err
	}

	due := reminder.Exactly(reminder.Due(today, entry.Schedule, now, c.Lead), c.Lead)
	if len(due) == 0 {
		if c.DryRun {
			fmt.Println("Nothing due.")
		}
		return nil
	}

	sender := c.Sender
	if sender == nil {
		sender = notifier.New()
	}

	for _, r := range due {
		if c.DryRun {
			fmt.Println("[DryRun] " + r.Text())
			continue
		}
		if err := sender.Notify(bg, r.Text()); err != nil {
			// Keep going; later reminders may still get through.
			logger.Warn("Failed to send notification", "key", r.Key, "kind", r.Kind, "error", err)
			fmt.Printf("Failed to send notification: %v\n", err)
		}
	}
	return nil
}
