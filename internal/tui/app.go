// Package tui provides the interactive Bubble Tea dashboard for paysplit.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paysplit/internal/allocation"
	"github.com/theirongolddev/paysplit/internal/budget"
	"github.com/theirongolddev/paysplit/internal/cli"
	"github.com/theirongolddev/paysplit/internal/model"
	"github.com/theirongolddev/paysplit/internal/tui/components"
	"github.com/theirongolddev/paysplit/internal/tui/theme"
)

const (
	tabOverview = iota
	tabAllocate
	tabGoals
	tabOptimize
)

const (
	minTerminalWidth = 72
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5
)

// changedMsg reports the outcome of a budget mutation run as a command.
type changedMsg struct {
	note string
	err  error
}

// App is the root Bubble Tea model.
type App struct {
	ctx context.Context
	svc *budget.Service

	state   model.State
	report  budget.Report
	preview allocation.Event

	width     int
	height    int
	activeTab int
	showHelp  bool
	message   string

	keys keyMap
	help help.Model

	paycheckForm *huh.Form
	paycheckVals paycheckValues
}

// NewApp returns a dashboard over svc. ctx is passed to every mutation.
func NewApp(ctx context.Context, svc *budget.Service) App {
	a := App{
		ctx:  ctx,
		svc:  svc,
		keys: newKeyMap(),
		help: help.New(),
	}
	a.recompute()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

func (a *App) recompute() {
	a.state = a.svc.State()
	a.report = budget.BuildReport(a.state)
	a.preview = allocation.Compute(a.state.Paycheck, a.state.DeductTax, a.state.Main, a.state.Savings)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.paycheckForm != nil {
			a.paycheckForm = a.paycheckForm.WithWidth(a.formWidth())
		}
		return a, nil

	case changedMsg:
		a.recompute()
		if msg.err != nil {
			a.message = msg.err.Error()
		} else {
			a.message = msg.note
		}
		return a, nil

	case tea.MouseMsg:
		if a.paycheckForm != nil || a.showHelp {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.paycheckForm != nil {
			return a.updatePaycheckForm(msg)
		}
		if key.Matches(msg, a.keys.Help) {
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			a.help.ShowAll = false
			return a, nil
		}
		return a.handleKey(msg)
	}

	if a.paycheckForm != nil {
		return a.updatePaycheckForm(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.NextTab):
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case key.Matches(msg, a.keys.PrevTab):
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	case key.Matches(msg, a.keys.Reload):
		a.message = "reloaded"
		if err := a.svc.Refresh(a.ctx); err != nil {
			a.message = err.Error()
		}
		a.recompute()
		return a, nil
	}

	switch a.activeTab {
	case tabAllocate:
		switch {
		case key.Matches(msg, a.keys.EditPaycheck):
			return a.openPaycheckForm()
		case key.Matches(msg, a.keys.ToggleTax):
			return a, a.toggleTaxCmd(!a.state.DeductTax)
		case key.Matches(msg, a.keys.Apply):
			return a, a.applyPaycheckCmd()
		}
	case tabOptimize:
		switch {
		case key.Matches(msg, a.keys.AdoptMain):
			return a, a.adoptMainCmd()
		case key.Matches(msg, a.keys.AdoptSavings):
			return a, a.adoptSavingsCmd()
		}
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) setPaycheckCmd(gross decimal.Decimal, deductTax bool) tea.Cmd {
	svc, ctx := a.svc, a.ctx
	return func() tea.Msg {
		svc.SetPaycheck(ctx, gross, deductTax)
		return changedMsg{note: "paycheck updated"}
	}
}

func (a App) toggleTaxCmd(deductTax bool) tea.Cmd {
	svc, ctx := a.svc, a.ctx
	return func() tea.Msg {
		svc.SetDeductTax(ctx, deductTax)
		return changedMsg{note: "tax withholding updated"}
	}
}

func (a App) applyPaycheckCmd() tea.Cmd {
	svc, ctx := a.svc, a.ctx
	return func() tea.Msg {
		ev := svc.ApplyPaycheck(ctx)
		if ev.Net.IsZero() {
			return changedMsg{note: "no paycheck to apply"}
		}
		return changedMsg{note: "applied " + cli.FormatCurrencyFull(ev.Net) + " to balances"}
	}
}

func (a App) adoptMainCmd() tea.Cmd {
	svc, ctx := a.svc, a.ctx
	return func() tea.Msg {
		if _, err := svc.AdoptMainSuggestion(ctx); err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{note: "adopted main split"}
	}
}

func (a App) adoptSavingsCmd() tea.Cmd {
	svc, ctx := a.svc, a.ctx
	return func() tea.Msg {
		svc.AdoptSavingsSuggestion(ctx)
		return changedMsg{note: "adopted savings split"}
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.paycheckForm != nil {
		return a.viewPaycheckForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  paysplit needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(a.help.View(a.keys))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("o a g t jump to tab · press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.help.ShortHelpView(a.keys.tabHelp(a.activeTab)), a.message, a.svc.LastSaveError())

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabAllocate:
		content = a.renderAllocateTab(cw)
	case tabGoals:
		content = a.renderGoalsTab(cw)
	case tabOptimize:
		content = a.renderOptimizeTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
