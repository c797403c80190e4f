package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/dashboard"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

func TestDashboardModel_Update(t *testing.T) {
	m := NewDashboardModel("user_1", nil, time.UTC)

	groceries := uuid.New()
	summary := &dashboard.Summary{
		Period: dashboard.Period{
			From: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		},
		Totals: dashboard.Totals{Expense: 3000, Income: 10000, Net: 7000, AverageDailyExpense: 300},
		ByCategory: []dashboard.CategoryBreakdown{
			{Category: dashboard.CategorySummary{ID: &groceries, Name: "Groceries"}, Amount: 2000, Ratio: 2.0 / 3},
			{Category: dashboard.CategorySummary{Name: dashboard.UncategorizedName}, Amount: 1000, Ratio: 1.0 / 3},
		},
	}

	next, _ := m.Update(loadSummaryMsg{summary: summary})
	m = next.(DashboardModel)

	require.False(t, m.loading)
	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Groceries", rows[0][0])
	assert.Equal(t, "20.00", rows[0][1])
	assert.Equal(t, "66.7%", rows[0][2])
	assert.Equal(t, "Uncategorized", rows[1][0])
	assert.Contains(t, m.View(), "100.00")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = next.(DashboardModel)

	assert.Equal(t, TimeframeLastMonth, m.timeframe)
	assert.True(t, m.loading)
	assert.NotNil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestCategoriesModel_Update(t *testing.T) {
	m := NewCategoriesModel("user_1", nil)

	owner := "user_1"
	name, err := category.NewName("Pets")
	require.NoError(t, err)

	defaultName, err := category.NewName("Salary")
	require.NoError(t, err)

	next, _ := m.Update(loadCategoriesMsg{categories: []*category.Category{
		{ID: uuid.New(), UserID: &owner, Name: name, Type: transaction.TypeExpense, Archived: true},
		{ID: uuid.New(), Name: defaultName, Type: transaction.TypeIncome},
	}})
	m = next.(CategoriesModel)

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Pets", "expense", "you", "yes", ""}, []string(rows[0]))
	assert.Equal(t, []string{"Salary", "income", "default", "", ""}, []string(rows[1]))
}
