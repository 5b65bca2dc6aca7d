package entries

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/timebox/internal/cli"
)

// HealCmd rewrites rows whose schedule is legacy or malformed into the
// structured shape. Nothing is lost: each row is read through the same
// reconciliation both surfaces use and saved back.
type HealCmd struct {
	DryRun bool `help:"Only report what would be rewritten."`
}

func (c *HealCmd) Run(ctx *cli.Context) error {
	report, err := ctx.Planner.Heal(context.Background(), c.DryRun)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d entries.\n", report.Audit.Checked)
	if !report.Audit.HasConflicts() {
		fmt.Println("✓ All entries are in structured form.")
		return nil
	}
	fmt.Print(report.Audit.FormatReport())

	if len(report.Dates) == 0 {
		fmt.Println("Nothing can be healed automatically.")
		return nil
	}
	if report.DryRun {
		fmt.Printf("Would rewrite %d entries: %s\n", len(report.Dates), strings.Join(report.Dates, ", "))
		return nil
	}
	fmt.Printf("✓ Rewrote %d entries: %s\n", len(report.Dates), strings.Join(report.Dates, ", "))
	return nil
}
