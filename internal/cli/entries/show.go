package entries

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/schedule"
)

var bold = color.New(color.Bold)

type ShowCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, default today)."`
	All  bool   `help:"Include empty slots."`
	JSON bool   `name:"json" help:"Print the entry as JSON."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = ctx.Planner.Today()
	}

	entry, err := ctx.Planner.Load(context.Background(), date)
	if err != nil {
		return err
	}

	if c.JSON {
		out, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	_, _ = fmt.Fprintln(color.Output, bold.Sprintf("Timeboxing for %s", entry.Date))
	if !entry.Persisted() {
		fmt.Println("(no entry saved for this date)")
	}
	printBlock("Top priorities", entry.TopPriorities)
	printBlock("Brain dump", entry.BrainDump)

	_, _ = fmt.Fprintln(color.Output, "\n"+bold.Sprint("Schedule"))
	tbl := slotTable(entry, c.All)
	if len(tbl.Rows) <= 1 {
		fmt.Println("  nothing scheduled")
		return nil
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	return nil
}

func printBlock(title, body string) {
	_, _ = fmt.Fprintln(color.Output, "\n"+bold.Sprint(title))
	if body == "" {
		fmt.Println("  -")
		return
	}
	fmt.Println(body)
}

func slotTable(entry models.Entry, all bool) *uitable.Table {
	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("Time"), bold.Sprint("Done"), bold.Sprint("Task"), bold.Sprint("Color"))
	for _, key := range schedule.Keys() {
		slot := entry.Schedule[key]
		if !all && slot.IsEmpty() {
			continue
		}
		end, _ := schedule.SlotEnd(key)
		done := " "
		if slot.Checked {
			done = color.GreenString("✓")
		}
		tbl.AddRow(key+"-"+end, done, slot.Task, slot.Color.String())
	}
	return tbl
}
