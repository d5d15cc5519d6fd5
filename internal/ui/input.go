package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unitdeck/unitdeck/internal/controller"
	"github.com/unitdeck/unitdeck/internal/logging/events"
	"github.com/unitdeck/unitdeck/internal/view"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	events.UI.Key(key.String())
	if m.mode == ModeFilter {
		return m.handleFilterKey(key)
	}
	return m.handleListKey(key)
}

func (m *Model) handleListKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "esc":
		if m.filter.Query != "" || len(m.filter.Statuses) > 0 {
			m.resetFilter()
			return nil
		}
		return tea.Quit
	case "/":
		m.mode = ModeFilter
		m.filterCursorDirty = true
		return nil
	case "up", "k", "ctrl+p":
		m.moveCursor(-1)
	case "down", "j", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.pageSize())
	case "pgdown":
		m.moveCursor(m.pageSize())
	case "home":
		m.setCursor(0)
	case "end":
		m.setCursor(len(m.rows) - 1)
	case "ctrl+r":
		if m.coordinator != nil {
			m.coordinator.Refresh()
		}
	case "s":
		return m.actionOnSelection(controller.ActionStart)
	case "t":
		return m.actionOnSelection(controller.ActionStop)
	case "r":
		return m.actionOnSelection(controller.ActionRestart)
	case "1", "2", "3", "4", "5":
		m.toggleStatus(int(key.String()[0] - '1'))
	}
	return nil
}

func (m *Model) handleFilterKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "enter":
		m.mode = ModeList
		return nil
	case "ctrl+u":
		m.setQuery("")
		return nil
	case "backspace":
		runes := []rune(m.filter.Query)
		if len(runes) > 0 {
			m.setQuery(string(runes[:len(runes)-1]))
		}
		return nil
	case "up", "ctrl+p":
		m.moveCursor(-1)
		return nil
	case "down", "ctrl+n":
		m.moveCursor(1)
		return nil
	}
	switch key.Type {
	case tea.KeySpace:
		m.setQuery(m.filter.Query + " ")
	case tea.KeyRunes:
		m.setQuery(m.filter.Query + string(key.Runes))
	}
	return nil
}

func (m *Model) actionOnSelection(action controller.Action) tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	return m.dispatchAction(row.Unit.Name, action)
}

func (m *Model) toggleStatus(idx int) {
	statuses := view.Statuses()
	if idx < 0 || idx >= len(statuses) {
		return
	}
	m.filter = m.filter.Toggle(statuses[idx])
	events.UI.FilterStatus(string(statuses[idx]), m.filter.Selected(statuses[idx]))
	m.rederive()
}

func (m *Model) setQuery(query string) {
	m.filter = m.filter.WithQuery(query)
	m.filterCursorDirty = true
	events.UI.FilterQuery(query)
	m.rederive()
	if strings.TrimSpace(query) != "" && len(m.rows) > 0 {
		if idx := view.BestMatchIndex(m.rows, query); idx >= 0 {
			m.setCursor(idx)
		}
	}
}

func (m *Model) resetFilter() {
	m.filter = view.Filter{}
	m.filterCursorDirty = true
	m.rederive()
}
