package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/timeutil"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDate
	fieldTime
	fieldCategory
	fieldPriority
	fieldRingtone
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title:", "Description:", "Date (YYYY-MM-DD):", "Time (HH:MM):",
	"Category:", "Priority:", "Ringtone:",
}

// choice is a fixed option list cycled with left/right.
type choice struct {
	options []string
	index   int
}

func newChoice[T ~string](options []T, selected T) choice {
	c := choice{}
	for i, o := range options {
		c.options = append(c.options, string(o))
		if o == selected {
			c.index = i
		}
	}
	return c
}

func (c choice) value() string { return c.options[c.index] }

func (c *choice) next() { c.index = (c.index + 1) % len(c.options) }

func (c *choice) prev() { c.index = (c.index - 1 + len(c.options)) % len(c.options) }

type form struct {
	editingID string
	inputs    [fieldTime + 1]textinput.Model
	choices   [fieldCount - fieldCategory]choice
	focus     int
	err       string
}

func newForm(r *model.Reminder, defaultAt string) form {
	f := form{}
	for i := range f.inputs {
		f.inputs[i] = textinput.New()
		f.inputs[i].CharLimit = 200
	}
	f.inputs[fieldTitle].Placeholder = "What do you need to remember?"
	f.inputs[fieldDate].Placeholder = "2006-01-02"
	f.inputs[fieldTime].Placeholder = "15:04"

	in := model.Input{}.Normalize()
	if r != nil {
		f.editingID = r.ID
		f.inputs[fieldTitle].SetValue(r.Title)
		f.inputs[fieldDescription].SetValue(r.Description)
		local := r.ScheduledAt.Local()
		f.inputs[fieldDate].SetValue(local.Format("2006-01-02"))
		f.inputs[fieldTime].SetValue(local.Format("15:04"))
		in = model.Input{Category: r.Category, Priority: r.Priority, Ringtone: r.Ringtone}.Normalize()
	} else if date, clock, ok := strings.Cut(defaultAt, "T"); ok {
		f.inputs[fieldDate].SetValue(date)
		f.inputs[fieldTime].SetValue(clock)
	}

	f.choices[fieldCategory-fieldCategory] = newChoice(model.Categories, in.Category)
	f.choices[fieldPriority-fieldCategory] = newChoice(model.Priorities, in.Priority)
	f.choices[fieldRingtone-fieldCategory] = newChoice(model.Ringtones, in.Ringtone)

	f.inputs[fieldTitle].Focus()
	return f
}

func (f *form) setFocus(i int) {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return nil
	}

	if f.focus >= fieldCategory {
		c := &f.choices[f.focus-fieldCategory]
		switch msg.String() {
		case "right", "l", " ":
			c.next()
		case "left", "h":
			c.prev()
		}
		return nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// input builds the submission; an unparsable date or time is an error here,
// everything else is left to the controller's validation.
func (f *form) input() (model.Input, error) {
	at, err := timeutil.ParseLocal(f.inputs[fieldDate].Value(), f.inputs[fieldTime].Value())
	if err != nil {
		return model.Input{}, fmt.Errorf("%w: %w", model.ErrInvalidReminder, err)
	}
	return model.Input{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		ScheduledAt: at,
		Category:    model.Category(f.choices[fieldCategory-fieldCategory].value()),
		Priority:    model.Priority(f.choices[fieldPriority-fieldCategory].value()),
		Ringtone:    model.Ringtone(f.choices[fieldRingtone-fieldCategory].value()),
	}, nil
}

func (f form) view() string {
	var b strings.Builder
	for i := 0; i < fieldCount; i++ {
		label := fieldLabels[i]
		if i == f.focus {
			label = "> " + label
		} else {
			label = "  " + label
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n  ")
		if i < fieldCategory {
			b.WriteString(f.inputs[i].View())
		} else {
			b.WriteString(fmt.Sprintf("< %s >", f.choices[i-fieldCategory].value()))
		}
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n" + statusOverdueStyle.Render(f.err) + "\n")
	}
	return b.String()
}
