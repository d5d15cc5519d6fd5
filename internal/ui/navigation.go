package ui

// chromeLines is the vertical space consumed by header, filter, status and
// message rows around the unit list.
const chromeLines = 6

func (m *Model) pageSize() int {
	page := m.height - chromeLines
	if m.showFooter {
		page--
	}
	if page < 1 {
		page = 10
	}
	return page
}

func (m *Model) moveCursor(delta int) {
	m.setCursor(m.cursorIdx + delta)
}

func (m *Model) setCursor(idx int) {
	if len(m.rows) == 0 {
		m.cursorIdx = 0
		m.viewportOffset = 0
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.rows)-1 {
		idx = len(m.rows) - 1
	}
	m.cursorIdx = idx
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	page := m.pageSize()
	if m.viewportOffset > m.cursorIdx {
		m.viewportOffset = m.cursorIdx
	}
	if m.cursorIdx >= m.viewportOffset+page {
		m.viewportOffset = m.cursorIdx - page + 1
	}
	if m.viewportOffset < 0 {
		m.viewportOffset = 0
	}
	if max := len(m.rows) - 1; m.viewportOffset > max && max >= 0 {
		m.viewportOffset = max
	}
}

// visibleRows returns the viewport slice of the derived rows.
func (m *Model) visibleRows() []int {
	page := m.pageSize()
	if len(m.rows) == 0 {
		return nil
	}
	end := m.viewportOffset + page
	if end > len(m.rows) {
		end = len(m.rows)
	}
	indices := make([]int, 0, end-m.viewportOffset)
	for i := m.viewportOffset; i < end; i++ {
		indices = append(indices, i)
	}
	return indices
}
