package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

type paycheckValues struct {
	amount    string
	deductTax bool
}

func newPaycheckForm(v *paycheckValues, width int) *huh.Form {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Paycheck amount").
				Placeholder("2,000").
				Value(&v.amount).
				Validate(model.ValidateAmount),
			huh.NewConfirm().
				Title("Withhold 33% for taxes?").
				Value(&v.deductTax),
		),
	).WithKeyMap(km).WithWidth(width).WithShowHelp(true)
}

func (a App) formWidth() int {
	w := a.width - 8
	if w > 60 {
		w = 60
	}
	return w
}

func (a App) openPaycheckForm() (tea.Model, tea.Cmd) {
	a.paycheckVals = paycheckValues{deductTax: a.state.DeductTax}
	if !a.state.Paycheck.IsZero() {
		a.paycheckVals.amount = a.state.Paycheck.String()
	}
	a.paycheckForm = newPaycheckForm(&a.paycheckVals, a.formWidth())
	return a, a.paycheckForm.Init()
}

// updatePaycheckForm forwards msg to the open form and commits the values
// once it completes. Aborting closes the form without changes.
func (a App) updatePaycheckForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.paycheckForm.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		a.paycheckForm = f
	}

	switch a.paycheckForm.State {
	case huh.StateCompleted:
		a.paycheckForm = nil
		return a, a.setPaycheckCmd(model.ParseAmount(a.paycheckVals.amount), a.paycheckVals.deductTax)
	case huh.StateAborted:
		a.paycheckForm = nil
		a.message = "edit cancelled"
		return a, nil
	}
	return a, cmd
}

func (a App) viewPaycheckForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.paycheckForm.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}
