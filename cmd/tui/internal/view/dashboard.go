package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budget/internal/dashboard"
)

type DashboardModel struct {
	CommonModel
	service *dashboard.Service
	loc     *time.Location

	timeframe Timeframe
	table     table.Model
	summary   *dashboard.Summary
	loading   bool
	err       error
}

func NewDashboardModel(userID string, svc *dashboard.Service, loc *time.Location) DashboardModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Category", Width: 20},
			{Title: "Amount", Width: 12},
			{Title: "Share", Width: 8},
		}),
		table.WithHeight(12),
	)

	return DashboardModel{
		CommonModel: CommonModel{UserID: userID},
		service:     svc,
		loc:         loc,
		timeframe:   TimeframeThisMonth,
		table:       t,
		loading:     true,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "Esc: back | t: next timeframe | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.refreshTable()

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "t":
			m.timeframe = m.timeframe.Next()
			m.loading = true

			return m, m.loadCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DashboardModel) View() string {
	header := fmt.Sprintf("Timeframe: [t] %s", activeStyle(m.timeframe.String()))

	if m.loading {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\nLoading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(header + fmt.Sprintf("\n\nError: %v", m.err))
	}

	s := m.summary
	totals := fmt.Sprintf(
		"%s to %s\n\nIncome:   %s\nExpense:  %s\nNet:      %s\nPer day:  %.2f",
		FormatDate(s.Period.From),
		FormatDate(s.Period.To),
		FormatAmount(s.Totals.Income),
		FormatAmount(s.Totals.Expense),
		FormatAmount(s.Totals.Net),
		s.Totals.AverageDailyExpense/100,
	)

	box := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.JoinHorizontal(lipgloss.Top, box.Render(totals), "  ", box.Render(m.table.View())),
	))
}

func (m *DashboardModel) refreshTable() {
	if m.summary == nil {
		m.table.SetRows(nil)
		return
	}

	rows := make([]table.Row, 0, len(m.summary.ByCategory))
	for _, b := range m.summary.ByCategory {
		rows = append(rows, table.Row{
			b.Category.Name,
			FormatAmount(b.Amount),
			fmt.Sprintf("%.1f%%", b.Ratio*100),
		})
	}

	m.table.SetRows(rows)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

type loadSummaryMsg struct {
	summary *dashboard.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	userID := m.UserID
	period := m.timeframe.Period(time.Now(), m.loc)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.service.Summary(ctx, userID, period)

		return loadSummaryMsg{summary: s, err: err}
	}
}
