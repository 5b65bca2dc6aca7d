package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timebox/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateSlotForm:
		content = docStyle.Render(m.form.View())
	case constants.StateHistory:
		content = docStyle.Render(m.history.View())
	default:
		content = m.viewEditor()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	title := "Timebox · " + m.date
	if m.state == constants.StateHistory {
		title = "Timebox · History"
	}
	header := titleStyle.Render(title)

	var flags []string
	if m.date == m.planner.Today() {
		flags = append(flags, "today")
	}
	if m.loading {
		flags = append(flags, "loading...")
	}
	if m.dirty {
		flags = append(flags, "unsaved")
	}
	if len(flags) > 0 {
		header += " " + dimStyle.Render(strings.Join(flags, " · "))
	}
	return header
}

func (m Model) viewEditor() string {
	pane := func(title string, body string, focused bool) string {
		style := paneStyle
		if focused {
			style = focusedPaneStyle
		}
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, dimStyle.Render(title), body))
	}

	notes := lipgloss.JoinHorizontal(lipgloss.Top,
		pane("Top priorities", m.priorities.View(), m.focus == focusPriorities),
		pane("Brain dump", m.brainDump.View(), m.focus == focusBrainDump),
	)

	var parts []string
	for _, b := range m.banners {
		parts = append(parts, bannerStyle.Render("⏰ "+b))
	}
	parts = append(parts, notes, pane("Schedule", m.grid.View(), m.focus == focusGrid))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render("❌ " + m.errMsg)
	case m.status != "":
		return successStyle.Render(m.status)
	}
	return ""
}
