package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rowexec/pkg/database"
)

// Panel is one statement shown by the browser.
type Panel struct {
	Title    string
	Plan     string
	Result   database.QueryResult
	Err      error
	Duration time.Duration
}

// Browser is a bubbletea model that pages through a fixed set of results,
// one tab per statement.
type Browser struct {
	panels []Panel
	info   database.DatabaseInfo
	active int

	table       table.Model
	help        help.Model
	highlighter *PlanHighlighter
	keys        keyMap

	width    int
	height   int
	showPlan bool
}

// NewBrowser builds a browser over panels. info feeds the header line.
func NewBrowser(panels []Panel, info database.DatabaseInfo) Browser {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.Primary).
		BorderBottom(true).
		Bold(true).
		Foreground(palette.Primary)
	s.Selected = s.Selected.
		Foreground(bgDark).
		Background(palette.Secondary).
		Bold(false)
	t.SetStyles(s)

	b := Browser{
		panels:      panels,
		info:        info,
		table:       t,
		help:        help.New(),
		highlighter: NewPlanHighlighter(),
		keys:        keys,
	}
	b.load()
	return b
}

// Active is the index of the panel on screen.
func (b Browser) Active() int { return b.active }

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.help.Width = msg.Width
		b.table.SetHeight(max(3, msg.Height-12))
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.NextTab):
			b.switchTo(b.active + 1)
			return b, nil
		case key.Matches(msg, b.keys.PrevTab):
			b.switchTo(b.active - 1)
			return b, nil
		case key.Matches(msg, b.keys.ShowPlan):
			b.showPlan = !b.showPlan
			return b, nil
		case key.Matches(msg, b.keys.Help):
			b.help.ShowAll = !b.help.ShowAll
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

func (b *Browser) switchTo(i int) {
	if len(b.panels) == 0 {
		return
	}
	b.active = (i + len(b.panels)) % len(b.panels)
	b.load()
}

// load copies the active panel's result into the table widget.
func (b *Browser) load() {
	b.table.SetRows(nil)
	if len(b.panels) == 0 {
		b.table.SetColumns(nil)
		return
	}
	res := b.panels[b.active].Result

	columns := make([]table.Column, len(res.Columns))
	for i, name := range res.Columns {
		columns[i] = table.Column{Title: name, Width: columnWidth(res, i)}
	}
	rows := make([]table.Row, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = table.Row(r)
	}
	b.table.SetColumns(columns)
	b.table.SetRows(rows)
	b.table.GotoTop()
}

func columnWidth(res database.QueryResult, index int) int {
	const minWidth, maxWidth = 6, 30
	width := len(res.Columns[index]) + 2
	for _, row := range res.Rows {
		if index < len(row) && len(row[index])+2 > width {
			width = len(row[index]) + 2
		}
	}
	return min(max(width, minWidth), maxWidth)
}

func (b Browser) View() string {
	var sections []string
	sections = append(sections, b.renderHeader(), b.renderTabs())

	if len(b.panels) > 0 {
		p := b.panels[b.active]
		if b.showPlan && p.Plan != "" {
			sections = append(sections, planStyle.Render(b.highlighter.Highlight(p.Plan)))
		}
		switch {
		case p.Err != nil:
			sections = append(sections, RenderError(p.Err))
		case len(p.Result.Columns) > 0:
			sections = append(sections, b.table.View())
		}
		sections = append(sections, b.renderStatusBar(p))
	}

	sections = append(sections, b.help.View(b.keys))
	return appStyle.Render(strings.Join(sections, "\n"))
}

func (b Browser) renderHeader() string {
	title := titleStyle.Render("rowexec")
	stats := lipgloss.NewStyle().
		Foreground(textSecondary).
		Render(fmt.Sprintf("Tables: %d | Statements: %d | Errors: %d | Memory: %d B",
			b.info.TableCount, b.info.QueriesExecuted, b.info.ErrorCount, b.info.MemoryUsed))
	return lipgloss.JoinHorizontal(lipgloss.Left, title, "  ", stats)
}

func (b Browser) renderTabs() string {
	tabs := make([]string, len(b.panels))
	for i, p := range b.panels {
		style := tabStyle
		if i == b.active {
			style = activeTabStyle
		}
		tabs[i] = style.Render(p.Title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (b Browser) renderStatusBar(p Panel) string {
	var status string
	if p.Err != nil {
		status = lipgloss.NewStyle().Foreground(palette.Error).Render("● failed")
	} else {
		status = lipgloss.NewStyle().Foreground(palette.Accent).Render("● " + p.Result.Message)
	}
	timer := ""
	if p.Duration > 0 {
		timer = fmt.Sprintf(" | %v", p.Duration)
	}
	bar := statusBarStyle
	if b.width > 4 {
		bar = bar.Width(b.width - 4)
	}
	return bar.Render(status + lipgloss.NewStyle().Foreground(palette.Muted).Render(timer))
}

// RunBrowser shows panels full screen until the user quits.
func RunBrowser(panels []Panel, info database.DatabaseInfo) error {
	_, err := tea.NewProgram(NewBrowser(panels, info), tea.WithAltScreen()).Run()
	return err
}
