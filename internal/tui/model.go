package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/notifier"
	"github.com/julianstephens/timebox/internal/planner"
	"github.com/julianstephens/timebox/internal/reminder"
	"github.com/julianstephens/timebox/internal/schedule"
	"github.com/julianstephens/timebox/internal/tui/components/grid"
	"github.com/julianstephens/timebox/internal/tui/components/history"
)

type focusArea int

const (
	focusPriorities focusArea = iota
	focusBrainDump
	focusGrid
	focusCount
)

type Model struct {
	planner  *planner.Service
	sender   notifier.Sender
	tracker  *reminder.Tracker
	state    constants.SessionState
	focus    focusArea
	keys     KeyMap
	help     help.Model
	quitting bool
	width    int
	height   int

	date       string
	entryID    int64
	priorities textarea.Model
	brainDump  textarea.Model
	grid       grid.Model
	history    history.Model
	form       *huh.Form
	slotForm   *SlotFormModel

	loadToken string
	loading   bool
	saving    bool
	dirty     bool

	status  string
	errMsg  string
	banners []string
}

// NewModel builds the editor for date (today when empty). sender may be nil,
// in which case reminders only show in the banner.
func NewModel(p *planner.Service, sender notifier.Sender, date string) Model {
	if date == "" {
		date = p.Today()
	}

	priorities := textarea.New()
	priorities.Placeholder = "Top priorities, one per line"
	priorities.ShowLineNumbers = false
	priorities.SetHeight(5)

	brainDump := textarea.New()
	brainDump.Placeholder = "Brain dump"
	brainDump.ShowLineNumbers = false
	brainDump.SetHeight(5)

	m := Model{
		planner:    p,
		sender:     sender,
		tracker:    reminder.NewTracker(),
		state:      constants.StateEdit,
		focus:      focusGrid,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		date:       date,
		priorities: priorities,
		brainDump:  brainDump,
		grid:       grid.New(60, 14),
		history:    history.New(nil, 60, 14),
	}
	m.grid.Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.requestLoad(), reminderTickCmd())
}

// requestLoad marks the model as loading m.date. Results carrying an older
// token are dropped when they arrive.
func (m *Model) requestLoad() tea.Cmd {
	m.loadToken = uuid.NewString()
	m.loading = true
	m.errMsg = ""
	return loadEntryCmd(m.planner, m.loadToken, m.date)
}

func (m *Model) setDate(date string) tea.Cmd {
	m.date = date
	m.status = ""
	return m.requestLoad()
}

func (m *Model) shiftDate(days int) tea.Cmd {
	t, err := models.ParseDate(m.date)
	if err != nil {
		return nil
	}
	return m.setDate(t.AddDate(0, 0, days).Format(constants.DateFormat))
}

func (m *Model) applyEntry(e models.Entry) {
	m.date = e.Date
	m.entryID = e.ID
	m.priorities.SetValue(e.TopPriorities)
	m.brainDump.SetValue(e.BrainDump)
	sched := e.Schedule
	if sched == nil {
		sched = schedule.Empty()
	}
	m.grid.SetSchedule(sched)
	m.dirty = false
}

// Entry returns the form contents as an entry ready to save.
func (m Model) Entry() models.Entry {
	return models.Entry{
		ID:            m.entryID,
		Date:          m.date,
		TopPriorities: m.priorities.Value(),
		BrainDump:     m.brainDump.Value(),
		Schedule:      m.grid.Schedule(),
	}
}

func (m Model) suggestions() []string {
	return models.TaskOptions(m.priorities.Value(), m.brainDump.Value())
}

func (m *Model) setFocus(f focusArea) {
	m.focus = (f + focusCount) % focusCount
	m.priorities.Blur()
	m.brainDump.Blur()
	m.grid.Blur()
	switch m.focus {
	case focusPriorities:
		m.priorities.Focus()
	case focusBrainDump:
		m.brainDump.Focus()
	case focusGrid:
		m.grid.Focus()
	}
}

// checkReminders evaluates the in-memory schedule against now.
func (m *Model) checkReminders(now time.Time) tea.Cmd {
	due := m.tracker.Fresh(reminder.Due(m.date, m.grid.Schedule(), now, constants.ReminderLead))
	if len(due) == 0 {
		return nil
	}
	texts := make([]string, 0, len(due))
	for _, r := range due {
		texts = append(texts, r.Text())
	}
	m.banners = texts
	return notifyCmd(m.sender, texts)
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateHistory:
		return []key.Binding{m.keys.Back, m.keys.Quit}
	case constants.StateSlotForm:
		return []key.Binding{m.keys.Back}
	}
	keys := []key.Binding{m.keys.NextFocus, m.keys.Save}
	if m.focus == focusGrid {
		keys = append(keys, m.keys.Toggle, m.keys.Edit, m.keys.PrevDay, m.keys.NextDay, m.keys.History)
	}
	return append(keys, m.keys.Quit, m.keys.Help)
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}
