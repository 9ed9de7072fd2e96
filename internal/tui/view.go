package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/timeutil"
)

func (m Model) View() string {
	if v, _, ok := m.overlay.Top(); ok {
		return m.alarmView(v)
	}
	if m.mode == modeForm {
		return m.formView()
	}

	st := m.ctrl.Stats()
	header := headerStyle.Render("remindme")
	stats := statsStyle.Render(fmt.Sprintf("  %d active • %d completed • %d overdue • notifications %s",
		st.Active, st.Completed, st.Overdue, m.ctrl.Permission()))

	var b strings.Builder
	b.WriteString(header + stats + "\n")
	if m.advisory != "" {
		b.WriteString(statusOverdueStyle.Render(m.advisory) + "\n")
	}
	b.WriteString(m.filterRow() + "\n\n")
	if len(m.rows) == 0 {
		b.WriteString(statsStyle.Render("No reminders match. Press n to add one.") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}
	if m.mode == modeSearch {
		b.WriteString(m.search.View() + "\n")
	}

	commands := []string{
		keyStyle.Render("↑↓") + ": " + actionStyle.Render("navigate"),
		keyStyle.Render("n") + ": " + actionStyle.Render("add"),
		keyStyle.Render("e") + ": " + actionStyle.Render("edit"),
		keyStyle.Render("space") + ": " + actionStyle.Render("toggle done"),
		keyStyle.Render("x") + ": " + actionStyle.Render("delete"),
		keyStyle.Render("/ c p s r") + ": " + actionStyle.Render("filter"),
		keyStyle.Render("N") + ": " + actionStyle.Render("notifications"),
		keyStyle.Render("q") + ": " + actionStyle.Render("quit"),
	}
	b.WriteString("\n" + strings.Join(commands, bulletStyle.Render(" • ")))

	if m.statusMsg != "" && time.Now().Before(m.statusExpiry) {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.statusColor))
		b.WriteString("\n> " + statusStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m Model) filterRow() string {
	f := m.ctrl.Filter()
	or := func(s, all string) string {
		if s == "" {
			return all
		}
		return s
	}
	parts := []string{
		filterStyle.Render("search: " + or(f.Search, "-")),
		filterStyle.Render("category: " + or(string(f.Category), "all")),
		filterStyle.Render("priority: " + or(string(f.Priority), "all")),
		filterStyle.Render("status: " + or(string(f.Status), "all")),
	}
	return strings.Join(parts, " ")
}

func (m Model) formView() string {
	title := "New reminder"
	if m.form.editingID != "" {
		title = "Edit reminder"
	}
	footer := keyStyle.Render("tab") + ": " + actionStyle.Render("next field") + " " + bulletStyle.Render("•") + " " +
		keyStyle.Render("←→") + ": " + actionStyle.Render("change option") + " " + bulletStyle.Render("•") + " " +
		keyStyle.Render("enter") + ": " + actionStyle.Render("save") + " " + bulletStyle.Render("•") + " " +
		keyStyle.Render("esc") + ": " + actionStyle.Render("cancel")

	return lipgloss.JoinVertical(lipgloss.Top,
		headerStyle.Render(title),
		"",
		m.form.view(),
		footer,
	)
}

func (m Model) alarmView(v alarm.View) string {
	body := []string{
		modalTitleStyle.Render("⏰ " + v.Title),
	}
	if v.Description != "" {
		body = append(body, "", v.Description)
	}
	body = append(body,
		"",
		"Time: "+timeutil.FormatForDisplay(v.ScheduledAt),
		"Ringtone: "+v.RingtoneLabel,
		"",
		keyStyle.Render("enter")+": "+actionStyle.Render("dismiss")+" "+bulletStyle.Render("•")+" "+
			keyStyle.Render("esc")+": "+actionStyle.Render("dismiss"),
	)
	if n := m.overlay.Len(); n > 1 {
		body = append(body, statsStyle.Render(fmt.Sprintf("%d more ringing", n-1)))
	}

	modal := modalStyle.Render(lipgloss.JoinVertical(lipgloss.Center, body...))
	if m.width == 0 || m.height == 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
