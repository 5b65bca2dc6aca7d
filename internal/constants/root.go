package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "timebox"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/timebox/timebox.db"
	DefaultEnvFile     = ".env"
	DefaultAddr        = "127.0.0.1:5000"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// EntryTable is the single table every surface reads and writes
	EntryTable = "timeboxing_entry"
	// UniqueDateConstraint is the name of the one-row-per-date constraint
	UniqueDateConstraint = "unique_date"

	// SaveSuccessMessage is reported by every successful upsert
	SaveSuccessMessage = "Entry saved successfully!"

	// Schedule grid bounds. The last slot starts at 23:30.
	ScheduleFirstHour = 5
	ScheduleLastHour  = 23
	SlotMinutes       = 30

	// DefaultSlotColor is the color of a slot nobody painted
	DefaultSlotColor = "#ffffff"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "timebox-"
	BackupFileSuffix = ".db"

	// Reminder constants
	ReminderPollInterval = time.Minute
	ReminderLead         = time.Minute

	// Notify constants
	NotifierLockfileName   = "timebox-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.timebox"
	TrayExecutablePrefix   = "timebox-tray"
)

// Session States
const (
	StateEdit SessionState = iota
	StateSlotForm
	StateHistory
)
