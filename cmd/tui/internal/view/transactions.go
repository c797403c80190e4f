package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budget/internal/category"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type txState int

const (
	txStateBrowse txState = iota
	txStateNew
	txStateEdit
	txStateConfirmDelete
)

type TransactionsModel struct {
	CommonModel
	txService       *transaction.Service
	categoryService *category.Service
	rule            transaction.TransferRule

	state      txState
	table      table.Model
	txs        []*transaction.Transaction
	categories map[string]string
	form       *huh.Form
	loading    bool
	err        error
	status     string

	// Form bindings
	formType     string
	formAmount   string
	formDate     string
	formCategory string
	formDesc     string
	formConfirm  bool
}

func NewTransactionsModel(userID string, txSvc *transaction.Service, catSvc *category.Service, rule transaction.TransferRule) TransactionsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 10},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 16},
		{Title: "Description", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return TransactionsModel{
		CommonModel:     CommonModel{UserID: userID},
		txService:       txSvc,
		categoryService: catSvc,
		rule:            rule,
		table:           t,
		loading:         true,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateNew, txStateEdit, txStateConfirmDelete:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | d: delete | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.categories = msg.categories
		m.refreshTable()

		return m, nil

	case txSavedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == txStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterNew()
		case "e":
			return m.enterEdit()
		case "d":
			return m.enterDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m TransactionsModel) enterNew() (tea.Model, tea.Cmd) {
	m.formType = string(transaction.TypeExpense)
	m.formAmount = ""
	m.formDate = time.Now().Format(time.DateOnly)
	m.formCategory = ""
	m.formDesc = ""

	categoryOptions := make([]huh.Option[string], 0, len(m.categories)+1)
	for id, name := range m.categories {
		categoryOptions = append(categoryOptions, huh.NewOption(name, id))
	}

	sort.Slice(categoryOptions, func(i, j int) bool { return categoryOptions[i].Key < categoryOptions[j].Key })
	categoryOptions = append([]huh.Option[string]{huh.NewOption("None", "")}, categoryOptions...)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.TypeExpense)),
					huh.NewOption("Income", string(transaction.TypeIncome)),
					huh.NewOption("Transfer", string(transaction.TypeTransfer)),
				).
				Value(&m.formType),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("12.50").
				Value(&m.formAmount).
				Validate(func(s string) error {
					_, err := ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.formDate),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOptions...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("description").
				Title("Description").
				CharLimit(transaction.MaxDescriptionLength).
				Value(&m.formDesc),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateNew
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) enterEdit() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formDesc = tx.Description

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				CharLimit(transaction.MaxDescriptionLength).
				Value(&m.formDesc),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) enterDelete() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formConfirm = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %s %s?", FormatDate(tx.OccurredAt), FormatAmount(tx.Amount.Value()))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.formConfirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateConfirmDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case txStateNew:
		return m, m.createCmd()
	case txStateEdit:
		return m, m.updateCmd()
	case txStateConfirmDelete:
		if !m.form.GetBool("confirm") {
			return m, func() tea.Msg { return txSavedMsg{status: "Kept."} }
		}

		return m, m.deleteCmd()
	}

	return m, nil
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.state != txStateBrowse && m.form != nil {
		title := map[txState]string{
			txStateNew:           "New Transaction",
			txStateEdit:          "Edit Description",
			txStateConfirmDelete: "Delete Transaction",
		}[m.state]

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		categoryName := ""
		if tx.CategoryID != nil {
			categoryName = m.categories[tx.CategoryID.String()]
		}

		rows = append(rows, table.Row{
			FormatDate(tx.OccurredAt),
			string(tx.Type),
			FormatAmount(tx.SignedAmountUnder(m.rule)),
			categoryName,
			strings.TrimSpace(tx.Description),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadTxsMsg struct {
	txs        []*transaction.Transaction
	categories map[string]string
	err        error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, userID)
		if err != nil {
			return loadTxsMsg{err: err}
		}

		cats, err := m.categoryService.List(ctx, userID)
		if err != nil {
			return loadTxsMsg{err: err}
		}

		names := make(map[string]string, len(cats))
		for _, c := range cats {
			names[c.ID.String()] = c.Name.String()
		}

		return loadTxsMsg{txs: txs, categories: names}
	}
}

type txSavedMsg struct {
	status string
	err    error
}

func (m TransactionsModel) createCmd() tea.Cmd {
	userID := m.UserID
	params := transaction.CreateParams{
		Type:        m.form.GetString("type"),
		OccurredAt:  m.form.GetString("date"),
		CategoryID:  m.form.GetString("category"),
		Description: m.form.GetString("description"),
	}
	amount := m.form.GetString("amount")

	return func() tea.Msg {
		cents, err := ParseAmount(amount)
		if err != nil {
			return txSavedMsg{err: err}
		}

		params.Amount = cents

		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.txService.Create(ctx, userID, params); err != nil {
			return txSavedMsg{err: err}
		}

		return txSavedMsg{status: "Created."}
	}
}

func (m TransactionsModel) updateCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	userID := m.UserID
	desc := m.form.GetString("description")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.txService.Update(ctx, userID, tx.ID, transaction.UpdateParams{Description: &desc}); err != nil {
			return txSavedMsg{err: err}
		}

		return txSavedMsg{status: "Saved."}
	}
}

func (m TransactionsModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, userID, tx.ID); err != nil {
			return txSavedMsg{err: err}
		}

		return txSavedMsg{status: "Deleted."}
	}
}
