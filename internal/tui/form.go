package tui

import (
	"strings"

	"tms-cli/internal/validate"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldPassword
	fieldArea
	fieldChoice
)

// field is one labeled input. key matches the validate.Errors key.
type field struct {
	key   string
	label string
	kind  fieldKind

	input   textinput.Model
	area    textarea.Model
	choices []string
	labels  []string
	choice  int
}

func textField(key, label, value string) field {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 256
	// Static cursor: focusing never schedules blink ticks.
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(value)
	return field{key: key, label: label, kind: fieldText, input: in}
}

func passwordField(key, label string) field {
	f := textField(key, label, "")
	f.kind = fieldPassword
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func areaField(key, label, value string) field {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.Cursor.SetMode(cursor.CursorStatic)
	ta.CharLimit = 0
	ta.SetHeight(5)
	ta.SetValue(value)
	return field{key: key, label: label, kind: fieldArea, area: ta}
}

// choiceField cycles through fixed values with left/right.
func choiceField(key, label string, values, labels []string, value string) field {
	f := field{key: key, label: label, kind: fieldChoice, choices: values, labels: labels}
	for i, v := range values {
		if v == value {
			f.choice = i
		}
	}
	return f
}

func (f *field) value() string {
	switch f.kind {
	case fieldArea:
		return f.area.Value()
	case fieldChoice:
		if len(f.choices) == 0 {
			return ""
		}
		return f.choices[f.choice]
	default:
		return f.input.Value()
	}
}

func (f *field) focus() tea.Cmd {
	switch f.kind {
	case fieldArea:
		return f.area.Focus()
	case fieldChoice:
		return nil
	default:
		return f.input.Focus()
	}
}

func (f *field) blur() {
	switch f.kind {
	case fieldArea:
		f.area.Blur()
	case fieldChoice:
	default:
		f.input.Blur()
	}
}

// form is a vertical stack of fields with one focused at a time.
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	f := form{fields: fields}
	if len(f.fields) > 0 {
		f.fields[0].focus()
	}
	return f
}

func (f *form) value(key string) string {
	for i := range f.fields {
		if f.fields[i].key == key {
			return f.fields[i].value()
		}
	}
	return ""
}

func (f *form) focused() *field {
	if len(f.fields) == 0 {
		return nil
	}
	return &f.fields[f.focus]
}

func (f *form) onLast() bool { return f.focus == len(f.fields)-1 }

func (f *form) move(delta int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.fields[f.focus].blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].focus()
}

// update routes a key to the focused field. Tab and shift+tab move focus;
// enter moves to the next field except inside the description area.
func (f *form) update(msg tea.Msg) tea.Cmd {
	cur := f.focused()
	if cur == nil {
		return nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "tab", "down":
			if km.String() == "down" && cur.kind == fieldArea {
				break
			}
			return f.move(1)
		case "shift+tab", "up":
			if km.String() == "up" && cur.kind == fieldArea {
				break
			}
			return f.move(-1)
		case "enter":
			if cur.kind != fieldArea {
				return f.move(1)
			}
		case "left", "right", " ":
			if cur.kind == fieldChoice && len(cur.choices) > 0 {
				d := 1
				if km.String() == "left" {
					d = -1
				}
				cur.choice = (cur.choice + d + len(cur.choices)) % len(cur.choices)
				return nil
			}
		}
	}

	var cmd tea.Cmd
	switch cur.kind {
	case fieldArea:
		cur.area, cmd = cur.area.Update(msg)
	case fieldChoice:
	default:
		cur.input, cmd = cur.input.Update(msg)
	}
	return cmd
}

func (f *form) view(width int, errs validate.Errors) string {
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	for i := range f.fields {
		fd := &f.fields[i]
		label := fd.label
		if i == f.focus {
			label = styleAccent().Render(glyphCursor() + " " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n")

		switch fd.kind {
		case fieldArea:
			fd.area.SetWidth(width - 2)
			b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(fd.area.View()))
		case fieldChoice:
			b.WriteString("  " + renderChoices(fd, i == f.focus))
		default:
			b.WriteString("  " + renderInputLine(width-2, fd.input.View()))
		}
		b.WriteString("\n")
		if msg := errs.Field(fd.key); msg != "" {
			b.WriteString("  " + styleError().Render(msg) + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderChoices(fd *field, focused bool) string {
	parts := make([]string, 0, len(fd.choices))
	for i, v := range fd.choices {
		label := v
		if i < len(fd.labels) {
			label = fd.labels[i]
		}
		switch {
		case i == fd.choice && focused:
			parts = append(parts, styleSelected().Render(" "+label+" "))
		case i == fd.choice:
			parts = append(parts, styleAccent().Render("["+label+"]"))
		default:
			parts = append(parts, styleMuted().Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}
