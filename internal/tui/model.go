// Package tui is the terminal front-end: a reminder table with filters, an
// add/edit form and a modal for ringing alarms.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/app"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/storage"
	"github.com/noahxzhu/remindme/internal/timeutil"
	"github.com/noahxzhu/remindme/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
)

type (
	refreshMsg struct{}
	tickMsg    time.Time
	statusMsg  struct {
		message string
		color   string
	}
	advisoryMsg string
)

type Model struct {
	ctrl    *app.Controller
	overlay *Overlay
	ctx     context.Context

	mode     mode
	table    table.Model
	rows     []model.Reminder
	form     form
	search   textinput.Model
	advisory string

	statusMsg    string
	statusColor  string
	statusExpiry time.Time
	width        int
	height       int
}

func NewModel(ctx context.Context, ctrl *app.Controller, overlay *Overlay) Model {
	search := textinput.New()
	search.Placeholder = "search title or description"
	search.Prompt = "/ "

	m := Model{
		ctrl:        ctrl,
		overlay:     overlay,
		ctx:         ctx,
		search:      search,
		advisory:    ctrl.Advisory(),
		statusColor: "86",
	}
	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "Title", Width: 28},
			{Title: "When", Width: 28},
			{Title: "Left", Width: 12},
			{Title: "Category", Width: 10},
			{Title: "Priority", Width: 8},
			{Title: "Ringtone", Width: 8},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	m.table.SetStyles(tableStyles())
	m.reload()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func showStatus(msg string, color string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: msg, color: color}
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) reload() {
	m.rows = m.ctrl.FilteredView()
	now := m.ctrl.Now()

	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, table.Row{
			r.Title,
			timeutil.FormatForDisplay(r.ScheduledAt),
			timeutil.RemainingLabel(r.ScheduledAt, now),
			string(r.Category),
			renderPriority(r.Priority),
			r.Ringtone.Label(),
			renderStatus(r, now),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func renderStatus(r model.Reminder, now time.Time) string {
	switch {
	case r.Completed:
		return statusDoneStyle.Render("completed")
	case timeutil.IsLapsed(r.ScheduledAt, now):
		return statusOverdueStyle.Render("overdue")
	default:
		return statusPendingStyle.Render("active")
	}
}

func (m *Model) adjustLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	m.table.SetHeight(h)
}

func (m Model) selected() (model.Reminder, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return model.Reminder{}, false
	}
	return m.rows[c], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustLayout()
		return m, nil

	case tickMsg:
		m.reload()
		return m, tick()

	case refreshMsg, alarmsChangedMsg:
		m.reload()
		return m, nil

	case statusMsg:
		m.statusMsg = msg.message
		m.statusColor = msg.color
		m.statusExpiry = time.Now().Add(3 * time.Second)
		m.reload()
		return m, nil

	case advisoryMsg:
		m.advisory = string(msg)
		return m, nil

	case formErrMsg:
		m.form.err = msg.err
		return m, nil

	case formDoneMsg:
		m.mode = modeList
		m.reload()
		return m, showStatus(msg.status, "82")

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// A ringing alarm takes every key until it is dismissed.
		if _, dismiss, ok := m.overlay.Top(); ok {
			return m.handleAlarmKeys(msg, dismiss)
		}
		switch m.mode {
		case modeForm:
			return m.handleFormKeys(msg)
		case modeSearch:
			return m.handleSearchKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m Model) handleAlarmKeys(msg tea.KeyMsg, dismiss alarm.DismissFunc) (tea.Model, tea.Cmd) {
	var reason alarm.DismissReason
	switch msg.String() {
	case "esc":
		reason = alarm.DismissEscape
	case "enter", " ", "d":
		reason = alarm.DismissButton
	default:
		return m, nil
	}
	return m, func() tea.Msg {
		dismiss(reason)
		return alarmsChangedMsg{}
	}
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k", "down", "j", "pgup", "pgdown", "home", "end":
		m.table, _ = m.table.Update(msg)
	case "n", "a":
		m.mode = modeForm
		m.form = newForm(nil, m.ctrl.Now().Add(time.Hour).Format(timeutil.LocalLayout))
		return m, textinput.Blink
	case "e":
		if r, ok := m.selected(); ok {
			m.mode = modeForm
			m.form = newForm(&r, "")
			return m, textinput.Blink
		}
	case " ", "enter":
		if r, ok := m.selected(); ok {
			return m, m.complete(r.ID)
		}
	case "x", "delete":
		if r, ok := m.selected(); ok {
			return m, m.delete(r)
		}
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.ctrl.Filter().Search)
		m.search.Focus()
		return m, textinput.Blink
	case "c":
		f := m.ctrl.Filter()
		f.Category = cycle(model.Categories, f.Category)
		m.ctrl.SetFilter(f)
		m.reload()
	case "p":
		f := m.ctrl.Filter()
		f.Priority = cycle(model.Priorities, f.Priority)
		m.ctrl.SetFilter(f)
		m.reload()
	case "s":
		f := m.ctrl.Filter()
		f.Status = cycle(view.Statuses[1:], f.Status)
		m.ctrl.SetFilter(f)
		m.reload()
	case "r":
		m.ctrl.SetFilter(view.Filter{})
		m.reload()
	case "N":
		return m, m.enableNotifications()
	}
	return m, nil
}

// cycle steps through "" (all) and then each option.
func cycle[T ~string](options []T, current T) T {
	if current == "" {
		return options[0]
	}
	for i, o := range options {
		if o == current {
			if i+1 < len(options) {
				return options[i+1]
			}
			return ""
		}
	}
	return ""
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	f := m.ctrl.Filter()
	f.Search = m.search.Value()
	m.ctrl.SetFilter(f)
	m.reload()
	return m, cmd
}

type (
	formErrMsg  struct{ err string }
	formDoneMsg struct{ status string }
)

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, showStatus("Edit cancelled", "196")
	case "enter":
		return m, m.submit()
	}
	cmd := m.form.update(msg)
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	in, err := m.form.input()
	if err != nil {
		return func() tea.Msg { return formErrMsg{err: err.Error()} }
	}
	ctrl, ctx, id := m.ctrl, m.ctx, m.form.editingID
	return func() tea.Msg {
		var r model.Reminder
		var err error
		if id == "" {
			r, err = ctrl.AddReminder(ctx, in)
		} else {
			r, err = ctrl.UpdateReminder(ctx, id, in)
		}
		if err != nil {
			return formErrMsg{err: err.Error()}
		}
		verb := "Added"
		if id != "" {
			verb = "Updated"
		}
		return formDoneMsg{status: fmt.Sprintf("%s: %s", verb, r.Title)}
	}
}

func (m Model) complete(id string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		r, err := ctrl.CompleteReminder(ctx, id)
		if err != nil {
			return statusMsg{message: err.Error(), color: "196"}
		}
		if r.Completed {
			return statusMsg{message: "Completed: " + r.Title, color: "82"}
		}
		return statusMsg{message: "Reopened: " + r.Title, color: "226"}
	}
}

func (m Model) delete(r model.Reminder) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.DeleteReminder(ctx, r.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return statusMsg{message: err.Error(), color: "196"}
		}
		return statusMsg{message: "Deleted: " + r.Title, color: "196"}
	}
}

func (m Model) enableNotifications() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		perm, err := ctrl.EnableNotifications(ctx)
		if err != nil {
			return statusMsg{message: err.Error(), color: "196"}
		}
		return statusMsg{message: "Notifications: " + string(perm), color: "86"}
	}
}
