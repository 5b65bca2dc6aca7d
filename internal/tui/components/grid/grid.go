package grid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/schedule"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(13)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// Model renders the half-hour grid and tracks the selected row.
type Model struct {
	viewport viewport.Model
	keys     []string
	sched    models.Schedule
	cursor   int
	focused  bool
	width    int
	height   int
}

func New(width, height int) Model {
	m := Model{
		viewport: viewport.New(width, height),
		keys:     schedule.Keys(),
		sched:    schedule.Empty(),
		width:    width,
		height:   height,
	}
	m.Render()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetSchedule replaces the rendered schedule. The cursor stays where it was.
func (m *Model) SetSchedule(s models.Schedule) {
	m.sched = s.Clone()
	m.Render()
}

// Schedule returns a copy of the grid contents.
func (m Model) Schedule() models.Schedule {
	return m.sched.Clone()
}

func (m *Model) Focus() {
	m.focused = true
	m.Render()
}

func (m *Model) Blur() {
	m.focused = false
	m.Render()
}

func (m Model) Focused() bool {
	return m.focused
}

// Selected returns the key and slot under the cursor.
func (m Model) Selected() (string, models.Slot) {
	key := m.keys[m.cursor]
	return key, m.sched[key]
}

func (m Model) Cursor() int {
	return m.cursor
}

// Move shifts the cursor by delta rows, clamped to the grid.
func (m *Model) Move(delta int) {
	m.cursor = max(0, min(len(m.keys)-1, m.cursor+delta))
	m.Render()
}

// SetSlot writes slot at key.
func (m *Model) SetSlot(key string, slot models.Slot) {
	m.sched[key] = slot
	m.Render()
}

// ToggleSelected flips the checked state of the selected slot.
func (m *Model) ToggleSelected() {
	key, slot := m.Selected()
	slot.Checked = !slot.Checked
	m.SetSlot(key, slot)
}

func (m *Model) Render() {
	var b strings.Builder
	for i, key := range m.keys {
		slot := m.sched[key]
		end, _ := schedule.SlotEnd(key)

		pointer := "  "
		if m.focused && i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}

		check := "[ ]"
		if slot.Checked {
			check = "[x]"
		}

		var task string
		switch {
		case slot.Task == "":
			task = emptyStyle.Render("-")
		case slot.Checked:
			task = doneStyle.Render(slot.Task)
		default:
			task = taskStyle.Render(slot.Task)
		}

		fmt.Fprintf(&b, "%s%s %s %s %s\n",
			pointer,
			timeStyle.Render(key+" - "+end),
			Swatch(slot.Color),
			check,
			task,
		)
	}
	m.viewport.SetContent(strings.TrimSuffix(b.String(), "\n"))
	m.keepCursorVisible()
}

func (m *Model) keepCursorVisible() {
	if m.viewport.Height <= 0 {
		return
	}
	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// Swatch renders a two-cell block painted with c.
func Swatch(c models.Color) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Normalize().String())).
		Render("  ")
}
