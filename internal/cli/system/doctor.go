package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/julianstephens/timebox/internal/backup"
	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/keyring"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("❌")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	skipMark = color.New(color.Faint).Sprint("⊘")
)

// requiredColumns must exist on the entry table for either surface to work.
var requiredColumns = []string{"id", "date", "top_priorities", "brain_dump", "schedule"}

type DoctorCmd struct{}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	sqlite   bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Table structure", needsDB: true, run: checkTableStructure},
	{name: "Unique date constraint", needsDB: true, run: checkUniqueDate},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Backups present", warnOnly: true, sqlite: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone(time.Now()) }},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Fprintln(color.Output, "Running diagnostics...")
	fmt.Fprintf(color.Output, "Database: %s (%s)\n\n", ctx.Config.Describe(), ctx.Config.Source)

	hasError := false

	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Fprintf(color.Output, "%s Database reachable: FAIL\n", failMark)
		fmt.Fprintf(color.Output, "   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Fprintf(color.Output, "%s Database reachable: OK\n", okMark)
	}

	for _, c := range checks {
		switch {
		case c.needsDB && !dbReachable:
			fmt.Fprintf(color.Output, "%s %s: SKIPPED (database not reachable)\n", skipMark, c.name)
			continue
		case c.sqlite && !ctx.IsSQLite():
			fmt.Fprintf(color.Output, "%s %s: SKIPPED (not a SQLite database)\n", skipMark, c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Fprintf(color.Output, "%s %s: OK\n", okMark, c.name)
		case c.warnOnly:
			fmt.Fprintf(color.Output, "%s %s: WARNING\n", warnMark, c.name)
			fmt.Fprintf(color.Output, "   %v\n", err)
		default:
			fmt.Fprintf(color.Output, "%s %s: FAIL\n", failMark, c.name)
			fmt.Fprintf(color.Output, "   Error: %v\n", err)
			hasError = true
		}
	}

	if keyring.IsAvailable() {
		fmt.Fprintf(color.Output, "%s OS keyring: available\n", okMark)
	} else {
		fmt.Fprintf(color.Output, "%s OS keyring: unavailable (use %s instead)\n", skipMark, constants.EnvDBConnection)
	}

	fmt.Fprintln(color.Output)
	if hasError {
		fmt.Fprintln(color.Output, "Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}

	fmt.Fprintln(color.Output, "All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ctx.Store.Ping(c)
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'timebox migrate')", current, latest)
	}
	return nil
}

func checkTableStructure(ctx *cli.Context) error {
	cols, err := ctx.Store.TableColumns(context.Background())
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(cols))
	for _, col := range cols {
		have[strings.ToLower(col.Name)] = true
	}
	var missing []string
	for _, name := range requiredColumns {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s is missing columns: %s", constants.EntryTable, strings.Join(missing, ", "))
	}
	return nil
}

func checkUniqueDate(ctx *cli.Context) error {
	ok, err := ctx.Store.HasUniqueDate(context.Background())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no unique constraint on %s.date", constants.EntryTable)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	res, err := ctx.Planner.Audit(context.Background())
	if err != nil {
		return err
	}
	if res.HasConflicts() {
		msg := fmt.Sprintf("%d issue(s) in %d entries\n%s", len(res.Conflicts), res.Checked, res.FormatReport())
		if len(res.HealableDates()) > 0 {
			msg += "\n   Run 'timebox heal' to rewrite legacy or malformed rows."
		}
		return errors.New(msg)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'timebox backup create'")
	}
	return nil
}

func checkClockTimezone(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
