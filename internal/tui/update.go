package tui

import (
	"maps"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/tui/components/history"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case entryLoadedMsg:
		if msg.token != m.loadToken {
			logger.Debug("Dropping stale load", "date", msg.entry.Date)
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.applyEntry(msg.entry)
		return m, nil

	case entrySavedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = ""
			m.errMsg = "Save failed: " + msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.status = msg.result.Message
		if msg.result.Date == m.date {
			m.entryID = msg.result.ID
			if sameContent(msg.entry, m.Entry()) {
				m.dirty = false
			}
		}
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.state = constants.StateEdit
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.history.SetEntries(msg.entries)
		return m, nil

	case history.OpenDateMsg:
		m.state = constants.StateEdit
		return m, m.setDate(msg.Date)

	case reminderTickMsg:
		return m, tea.Batch(m.checkReminders(time.Time(msg)), reminderTickCmd())

	case notifiedMsg:
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	switch m.state {
	case constants.StateSlotForm:
		return m.updateSlotForm(msg)
	case constants.StateHistory:
		return m.updateHistory(msg)
	}
	return m.updateEdit(msg)
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Save):
			return m, m.save()
		case key.Matches(k, m.keys.NextFocus):
			m.setFocus(m.focus + 1)
			return m, nil
		case key.Matches(k, m.keys.PrevFocus):
			m.setFocus(m.focus - 1)
			return m, nil
		}

		// Letter keys only act as commands on the grid; the textareas need them.
		if m.focus == focusGrid {
			m.banners = nil
			switch {
			case key.Matches(k, m.keys.Up):
				m.grid.Move(-1)
			case key.Matches(k, m.keys.Down):
				m.grid.Move(1)
			case key.Matches(k, m.keys.Toggle):
				m.grid.ToggleSelected()
				m.dirty = true
			case key.Matches(k, m.keys.Edit):
				return m, m.openSlotForm()
			case key.Matches(k, m.keys.PrevDay):
				return m, m.shiftDate(-1)
			case key.Matches(k, m.keys.NextDay):
				return m, m.shiftDate(1)
			case key.Matches(k, m.keys.Today):
				return m, m.setDate(m.planner.Today())
			case key.Matches(k, m.keys.History):
				m.state = constants.StateHistory
				return m, loadHistoryCmd(m.planner)
			case key.Matches(k, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusPriorities:
		before := m.priorities.Value()
		m.priorities, cmd = m.priorities.Update(msg)
		m.dirty = m.dirty || before != m.priorities.Value()
	case focusBrainDump:
		before := m.brainDump.Value()
		m.brainDump, cmd = m.brainDump.Update(msg)
		m.dirty = m.dirty || before != m.brainDump.Value()
	case focusGrid:
		m.grid, cmd = m.grid.Update(msg)
	}
	return m, cmd
}

// save issues a background save of the current form. A second request while
// one is in flight, or while a load is pending, is refused.
func (m *Model) save() tea.Cmd {
	switch {
	case m.saving:
		m.status = "Save already in progress"
		return nil
	case m.loading:
		m.status = "Still loading " + m.date
		return nil
	}
	m.saving = true
	m.status = "Saving..."
	m.errMsg = ""
	return saveEntryCmd(m.planner, m.Entry())
}

func (m *Model) openSlotForm() tea.Cmd {
	key, slot := m.grid.Selected()
	m.slotForm = newSlotFormModel(key, slot)
	m.form = NewSlotForm(m.slotForm, m.suggestions())
	m.state = constants.StateSlotForm
	return m.form.Init()
}

func (m Model) updateSlotForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		m.closeSlotForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.grid.SetSlot(m.slotForm.Key, m.slotForm.Slot())
		m.dirty = true
		m.closeSlotForm()
		return m, nil
	case huh.StateAborted:
		m.closeSlotForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeSlotForm() {
	m.state = constants.StateEdit
	m.form = nil
	m.slotForm = nil
}

func (m Model) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && !m.history.Filtered() && key.Matches(k, m.keys.Back) {
		m.state = constants.StateEdit
		return m, nil
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	half := max(20, m.width/2-4)
	m.priorities.SetWidth(half)
	m.brainDump.SetWidth(half)

	// header, both notes panes, status line and help
	gridHeight := max(5, m.height-m.priorities.Height()-10)
	m.grid.SetSize(max(20, m.width-4), gridHeight)
	m.history.SetSize(max(20, m.width-2), max(5, m.height-4))
}

func sameContent(a, b models.Entry) bool {
	return a.TopPriorities == b.TopPriorities &&
		a.BrainDump == b.BrainDump &&
		maps.Equal(a.Schedule, b.Schedule)
}
