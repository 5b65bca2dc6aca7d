package cli

import (
	"github.com/julianstephens/timebox/internal/backup"
	"github.com/julianstephens/timebox/internal/config"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/planner"
	"github.com/julianstephens/timebox/internal/storage"
)

type Context struct {
	Store   storage.Provider
	Planner *planner.Service
	Config  config.Config
}

// NewContext wires a planner over store.
func NewContext(cfg config.Config, store storage.Provider) *Context {
	return &Context{
		Store:   store,
		Planner: planner.New(store),
		Config:  cfg,
	}
}

// IsSQLite reports whether entries live in a local SQLite file, the only
// store the backup commands can snapshot.
func (c *Context) IsSQLite() bool {
	return c.Store.Driver() == string(config.DriverSQLite)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		logger.Debug("Skipping automatic backup", "driver", c.Store.Driver())
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}
