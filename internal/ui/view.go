package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unitdeck/unitdeck/internal/format/table"
	"github.com/unitdeck/unitdeck/internal/inventory"
	"github.com/unitdeck/unitdeck/internal/view"
)

// View renders the unit list popup.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderFilter())
	b.WriteByte('\n')
	b.WriteString(m.renderStatusBar())
	b.WriteByte('\n')
	b.WriteString(m.renderMessages())
	b.WriteByte('\n')
	b.WriteString(m.renderRows())
	if m.showFooter {
		b.WriteByte('\n')
		b.WriteString(m.renderFooter())
	}
	return b.String()
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("unitdeck: %d units, %d shown", len(m.snapshot.Units), len(m.rows))
	if m.warnings > 0 {
		title += fmt.Sprintf(" (%d records skipped)", m.warnings)
	}
	if m.loading {
		title = "unitdeck: loading units..."
		return styles.Loading.Render(title)
	}
	return styles.Header.Render(title)
}

func (m *Model) renderFilter() string {
	prompt := styles.FilterPrompt.Render("/")
	query := styles.Filter.Render(m.filter.Query)
	if m.mode == ModeFilter {
		return prompt + query + m.filterCursor.View()
	}
	if m.filter.Query == "" {
		return prompt + styles.StatusOff.Render(" filter by name")
	}
	return prompt + query
}

func (m *Model) renderStatusBar() string {
	parts := make([]string, 0, 5)
	for i, status := range view.Statuses() {
		label := fmt.Sprintf("[%d:%s]", i+1, status)
		if m.filter.Selected(status) {
			parts = append(parts, styles.StatusOn.Render(label))
		} else {
			parts = append(parts, styles.StatusOff.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderMessages() string {
	if m.errMsg != "" {
		return styles.Error.Render(m.errMsg)
	}
	if m.infoMsg != "" {
		return styles.Info.Render(m.infoMsg)
	}
	return ""
}

func (m *Model) renderRows() string {
	if m.loading {
		return styles.Loading.Render("...")
	}
	if len(m.snapshot.Units) == 0 && m.haveSnapshot {
		return styles.Info.Render("no units reported by the service manager")
	}
	if len(m.rows) == 0 {
		return styles.Info.Render("no units match the current filters")
	}

	indices := m.visibleRows()
	descWidth := 0
	if m.width > 0 {
		// Leave room for the name/load/state columns plus the indicator.
		descWidth = m.width - 48
	}
	cells := make([][]string, 0, len(indices))
	for _, i := range indices {
		row := m.rows[i]
		cells = append(cells, []string{
			row.Unit.Name,
			row.Unit.LoadState,
			row.Effective(),
			table.Truncate(row.Unit.Description, descWidth),
		})
	}
	formatted := table.Format(cells, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft, table.AlignLeft})

	lines := make([]string, 0, len(formatted))
	for n, i := range indices {
		row := m.rows[i]
		line := formatted[n]
		if i == m.cursorIdx {
			lines = append(lines, styles.SelectedItemIndicator.Render(">")+" "+styles.SelectedItem.Render(line))
			continue
		}
		lines = append(lines, styles.ItemIndicator.Render(" ")+" "+m.rowStyle(row).Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) rowStyle(row view.Row) lipgloss.Style {
	if row.Pending != "" {
		return *styles.StatePending
	}
	switch row.Unit.Active {
	case inventory.StateActive:
		return *styles.StateActive
	case inventory.StateFailed:
		return *styles.StateFailed
	default:
		return *styles.StateInactive
	}
}

func (m *Model) renderFooter() string {
	hints := []string{
		"↑/↓ move",
		"/ filter",
		"1-5 status",
		"s start",
		"t stop",
		"r restart",
		"ctrl+r refresh",
		"q quit",
	}
	return styles.Footer.Render(strings.Join(hints, "  "))
}
