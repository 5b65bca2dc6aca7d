package entries

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/models"
)

type HistoryCmd struct {
	Limit int `help:"Show at most this many entries (0 for all)." default:"0"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Planner.History(context.Background())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries yet.")
		return nil
	}
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[:c.Limit]
	}

	_, _ = fmt.Fprintln(color.Output, historyTable(entries, ctx.Planner.Today()))
	return nil
}

func historyTable(entries []models.Entry, today string) *uitable.Table {
	tbl := uitable.New()
	tbl.MaxColWidth = 50
	tbl.AddRow(bold.Sprint("Date"), bold.Sprint("Top priority"), bold.Sprint("Slots"), bold.Sprint("Done"))
	for _, e := range entries {
		date := e.Date
		if date == today {
			date = color.CyanString(date)
		}
		done := fmt.Sprintf("%d", e.DoneSlots())
		if filled := e.FilledSlots(); filled > 0 && e.DoneSlots() == filled {
			done = color.GreenString(done)
		}
		tbl.AddRow(date, e.Summary(), e.FilledSlots(), done)
	}
	return tbl
}
