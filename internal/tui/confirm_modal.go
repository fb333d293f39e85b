package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusCancel confirmModalFocus = iota
	confirmFocusConfirm
)

type confirmChoice int

const (
	confirmPending confirmChoice = iota
	confirmAccepted
	confirmRejected
)

// confirmModal is a yes/no dialog. Focus starts on cancel so a stray enter
// never confirms a destructive action.
type confirmModal struct {
	title   string
	body    string
	confirm string
	cancel  string
	focus   confirmModalFocus
}

func newConfirmModal(title, body, confirmLabel string) confirmModal {
	return confirmModal{title: title, body: body, confirm: confirmLabel, cancel: "Cancel", focus: confirmFocusCancel}
}

func (c *confirmModal) update(msg tea.KeyMsg) confirmChoice {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		if c.focus == confirmFocusCancel {
			c.focus = confirmFocusConfirm
		} else {
			c.focus = confirmFocusCancel
		}
	case "y":
		return confirmAccepted
	case "n", "esc", "ctrl+g":
		return confirmRejected
	case "enter":
		if c.focus == confirmFocusConfirm {
			return confirmAccepted
		}
		return confirmRejected
	}
	return confirmPending
}

func (c confirmModal) view(width int) string {
	return renderConfirmModal(width, c.title, c.body, c.confirm, c.cancel, c.focus)
}

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	// No nested borders: some terminals leave background artifacts inside a
	// bordered modal.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y/n   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

func modalBodyWidth(width int) int {
	w := width - 8
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderModalBox(width int, title string, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(modalBodyWidth(width) + 2)
	return box.Render(styleTitle().Render(title) + "\n\n" + content)
}
