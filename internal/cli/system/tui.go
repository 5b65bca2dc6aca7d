package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/notifier"
	"github.com/julianstephens/timebox/internal/planner"
	"github.com/julianstephens/timebox/internal/tui"
)

type TuiCmd struct {
	Date string `arg:"" optional:"" help:"Date to open (YYYY-MM-DD, default today)."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Reject a bad date before taking over the terminal.
	if c.Date != "" && !models.ValidDate(c.Date) {
		return fmt.Errorf("%w %q: expected YYYY-MM-DD", planner.ErrInvalidDate, c.Date)
	}

	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Planner, notifier.New(), c.Date), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
