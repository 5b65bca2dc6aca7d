package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/cli/backups"
	"github.com/julianstephens/timebox/internal/cli/entries"
	"github.com/julianstephens/timebox/internal/cli/system"
	"github.com/julianstephens/timebox/internal/config"
	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/errors"
	"github.com/julianstephens/timebox/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `name:"db" help:"SQLite file path or PostgreSQL connection string. PostgreSQL strings must NOT embed a password; use TIMEBOX_DB_CONNECTION, DB_* variables, .pgpass or the OS keyring instead." env:"TIMEBOX_DB"`
	Debug   bool   `help:"Log debug output to stderr."`
	EnvFile string `help:"Environment file to load before resolving the database." default:"${env_file}"`

	Tui     system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"withargs"`
	Serve   system.ServeCmd    `cmd:"" help:"Serve the web form."`
	Init    system.InitCmd     `cmd:"" help:"Initialize timebox storage."`
	Migrate system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Show    entries.ShowCmd    `cmd:"" help:"Print the entry for a day."`
	History entries.HistoryCmd `cmd:"" help:"List all entries, newest first."`
	Heal    entries.HealCmd    `cmd:"" help:"Rewrite legacy or malformed entries in structured form."`
	Notify  system.NotifyCmd   `cmd:"" help:"Send reminders due now (run from cron every minute)."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

// Commands that open the store themselves or never touch it.
var skipLoad = []string{"init", "doctor", "keyring"}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily timeboxing planner: priorities, brain dump and a half-hour schedule"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":  constants.Version,
			"env_file": constants.DefaultEnvFile,
		},
	)

	if err := config.LoadEnvFile(CLI.EnvFile); err != nil {
		errors.Fatal(err)
	}

	cfg, err := config.Resolve(config.Options{DB: CLI.DB})
	if err != nil {
		errors.Fatal(err)
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: cfg.ConfigDir(),
		Stderr:    strings.HasPrefix(command, "serve"),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}
	logger.Debug("Resolved database", "db", cfg.Describe(), "source", cfg.Source, "command", command)

	store := cfg.NewStore()
	appCtx := cli.NewContext(cfg, store)

	if needsLoad(command) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close database", "error", closeErr)
	}
	if err != nil {
		errors.Fatal(err)
	}
}

func needsLoad(command string) bool {
	for _, name := range skipLoad {
		if command == name || strings.HasPrefix(command, name+" ") {
			return false
		}
	}
	return true
}
