package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budget/internal/category"
)

type CategoriesModel struct {
	CommonModel
	service *category.Service

	table   table.Model
	loading bool
	err     error
}

func NewCategoriesModel(userID string, svc *category.Service) CategoriesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 20},
			{Title: "Type", Width: 10},
			{Title: "Owner", Width: 10},
			{Title: "Archived", Width: 9},
			{Title: "Description", Width: 45},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return CategoriesModel{
		CommonModel: CommonModel{UserID: userID},
		service:     svc,
		table:       t,
		loading:     true,
	}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m CategoriesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCategoriesMsg:
		m.loading = false
		m.err = msg.err

		rows := make([]table.Row, 0, len(msg.categories))
		for _, c := range msg.categories {
			owner := "you"
			if c.IsDefault() {
				owner = "default"
			}

			archived := ""
			if c.Archived {
				archived = "yes"
			}

			rows = append(rows, table.Row{c.Name.String(), string(c.Type), owner, archived, c.Description})
		}

		m.table.SetRows(rows)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 8)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CategoriesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading categories...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)
}

type loadCategoriesMsg struct {
	categories []*category.Category
	err        error
}

func (m CategoriesModel) loadCmd() tea.Cmd {
	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.service.List(ctx, userID)

		return loadCategoriesMsg{categories: cats, err: err}
	}
}
