package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/notifier"
	"github.com/julianstephens/timebox/internal/planner"
)

const (
	storeTimeout  = 10 * time.Second
	notifyTimeout = 5 * time.Second
)

type entryLoadedMsg struct {
	token string
	entry models.Entry
	err   error
}

type entrySavedMsg struct {
	result planner.SaveResult
	entry  models.Entry
	err    error
}

type historyLoadedMsg struct {
	entries []models.Entry
	err     error
}

type reminderTickMsg time.Time

type notifiedMsg struct {
	err error
}

func loadEntryCmd(p *planner.Service, token, date string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		entry, err := p.Load(ctx, date)
		return entryLoadedMsg{token: token, entry: entry, err: err}
	}
}

// saveEntryCmd is not cancelled once issued; it runs to completion even if
// the user moves on to another date.
func saveEntryCmd(p *planner.Service, entry models.Entry) tea.Cmd {
	return func() tea.Msg {
		res, err := p.Save(context.Background(), entry)
		return entrySavedMsg{result: res, entry: entry, err: err}
	}
}

func loadHistoryCmd(p *planner.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		entries, err := p.History(ctx)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func reminderTickCmd() tea.Cmd {
	return tea.Tick(constants.ReminderPollInterval, func(t time.Time) tea.Msg {
		return reminderTickMsg(t)
	})
}

// notifyCmd forwards reminder text to the tray app. Failure is only logged.
func notifyCmd(sender notifier.Sender, texts []string) tea.Cmd {
	if sender == nil || len(texts) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		for _, text := range texts {
			if err := sender.Notify(ctx, text); err != nil {
				logger.Debug("Reminder notification not delivered", "error", err)
				return notifiedMsg{err: err}
			}
		}
		return notifiedMsg{}
	}
}
