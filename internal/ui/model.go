package ui

import (
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unitdeck/unitdeck/internal/backend"
	"github.com/unitdeck/unitdeck/internal/controller"
	"github.com/unitdeck/unitdeck/internal/inventory"
	"github.com/unitdeck/unitdeck/internal/systemctl"
	"github.com/unitdeck/unitdeck/internal/theme"
	"github.com/unitdeck/unitdeck/internal/view"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Mode distinguishes list navigation from filter editing.
type Mode int

const (
	ModeList Mode = iota
	ModeFilter
)

// Model implements the Bubble Tea model for the unit list popup.
type Model struct {
	snapshot     inventory.Snapshot
	haveSnapshot bool
	warnings     int
	rows         []view.Row
	filter       view.Filter
	mode         Mode

	cursorIdx      int
	viewportOffset int

	loading    bool
	errMsg     string
	infoMsg    string
	infoExpire time.Time

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool

	coordinator  *backend.Coordinator
	client       *systemctl.Client
	ctrl         *controller.Controller
	confirmDelay time.Duration

	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler
}

// NewModel initialises the UI state around the refresh coordinator and the
// systemctl client.
func NewModel(client *systemctl.Client, coordinator *backend.Coordinator, ctrl *controller.Controller, confirmDelay time.Duration, width, height int, showFooter, verbose bool) *Model {
	m := &Model{
		filter:       view.Filter{},
		mode:         ModeList,
		loading:      true,
		coordinator:  coordinator,
		client:       client,
		ctrl:         ctrl,
		confirmDelay: confirmDelay,
		showFooter:   showFooter,
		verbose:      verbose,
	}
	if width > 0 {
		m.width = width
		m.fixedWidth = true
	}
	if height > 0 {
		m.height = height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = *styles.Cursor
	}
	if styles.Filter != nil {
		c.TextStyle = *styles.Filter
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.coordinator != nil {
		cmds = append(cmds, waitForBackendEvent(m.coordinator))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
		reflect.TypeOf(actionDoneMsg{}):     m.handleActionDoneMsg,
		reflect.TypeOf(confirmTickMsg{}):    m.handleConfirmTickMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	m.ensureCursorVisible()
	return nil
}

// rederive recomputes the visible rows from the owned state stores.
func (m *Model) rederive() {
	m.rows = view.Derive(m.snapshot.Units, m.ctrl.Overlay(), m.filter)
	if m.cursorIdx >= len(m.rows) {
		m.cursorIdx = len(m.rows) - 1
	}
	if m.cursorIdx < 0 {
		m.cursorIdx = 0
	}
	m.ensureCursorVisible()
}

// selectedRow returns the unit under the cursor, if any.
func (m *Model) selectedRow() (view.Row, bool) {
	if m.cursorIdx < 0 || m.cursorIdx >= len(m.rows) {
		return view.Row{}, false
	}
	return m.rows[m.cursorIdx], true
}

func (m *Model) setInfo(text string) {
	m.infoMsg = text
	m.infoExpire = time.Now().Add(4 * time.Second)
}

func (m *Model) clearExpiredInfo() {
	if m.infoMsg != "" && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
	}
}
