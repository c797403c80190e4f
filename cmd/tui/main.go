package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budget/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budget/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budget/internal/category/store"
	"github.com/MrJamesThe3rd/budget/internal/config"
	"github.com/MrJamesThe3rd/budget/internal/dashboard"
	dashboardStore "github.com/MrJamesThe3rd/budget/internal/dashboard/store"
	"github.com/MrJamesThe3rd/budget/internal/database"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budget/internal/transaction/store"
)

type model struct {
	userID           string
	loc              *time.Location
	signRule         transaction.TransferRule
	txService        *transaction.Service
	categoryService  *category.Service
	dashboardService *dashboard.Service

	currentView View

	transactionsView view.TransactionsModel
	dashboardView    view.DashboardModel
	categoriesView   view.CategoriesModel
}

type View int

const (
	ViewMenu         View = 0
	ViewTransactions View = 1
	ViewDashboard    View = 2
	ViewCategories   View = 3
)

func initialModel() (model, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}

	if cfg.TUI.UserID == "" {
		return model{}, fmt.Errorf("TUI_USER_ID is required")
	}

	loc, err := cfg.Location()
	if err != nil {
		return model{}, err
	}

	signRule, err := cfg.TransferSignRule()
	if err != nil {
		return model{}, err
	}

	dashboardRule, err := cfg.DashboardTransferRule()
	if err != nil {
		return model{}, err
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return model{}, fmt.Errorf("connect to database: %w", err)
	}

	categoryService := category.NewService(categoryStore.New(db))

	return model{
		userID:           cfg.TUI.UserID,
		loc:              loc,
		signRule:         signRule,
		txService:        transaction.NewService(txStore.New(db), categoryService, transaction.WithLocation(loc)),
		categoryService:  categoryService,
		dashboardService: dashboard.NewService(dashboardStore.New(db), dashboard.WithTransferRule(dashboardRule)),
		currentView:      ViewMenu,
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.userID, m.txService, m.categoryService, m.signRule)

				return m, m.transactionsView.Init()
			case "2":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.userID, m.dashboardService, m.loc)

				return m, m.dashboardView.Init()
			case "3":
				m.currentView = ViewCategories
				m.categoriesView = view.NewCategoriesModel(m.userID, m.categoryService)

				return m, m.categoriesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewCategories:
		var newModel tea.Model
		newModel, cmd = m.categoriesView.Update(msg)
		m.categoriesView = newModel.(view.CategoriesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Budget TUI\n\n" +
				"1. Transactions\n" +
				"2. Dashboard\n" +
				"3. Categories\n\n" +
				"q. Quit",
		)
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewCategories:
		return m.categoriesView.View()
	}

	return "Unknown View"
}

func main() {
	m, err := initialModel()
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
