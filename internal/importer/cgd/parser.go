package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/budget/internal/encoding"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const dateLayout = "02-01-2006"

// Parser reads CGD bank CSV exports. The export flavour (conta, extrato or
// cartão) is picked by matching the header row against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, _, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	l, headerIdx, ok := findLayout(rows)
	if !ok {
		return nil, fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão")
	}

	var params []transaction.CreateParams

	for i, row := range rows[headerIdx+1:] {
		line := headerIdx + i + 2

		entry, ok, err := l.read(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		if ok {
			params = append(params, entry)
		}
	}

	return params, nil
}

// layout is a profile resolved against a concrete header row.
type layout struct {
	profile *Profile
	date    int
	desc    int
	amount  int
	debit   int
	credit  int
}

func findLayout(rows [][]string) (layout, int, bool) {
	for rowIdx, row := range rows {
		cols := make(map[string]int, len(row))

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if l, ok := resolve(&profiles[i], cols); ok {
				return l, rowIdx, true
			}
		}
	}

	return layout{}, 0, false
}

func resolve(p *Profile, cols map[string]int) (layout, bool) {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return layout{}, false
		}
	}

	l := layout{profile: p, date: cols[p.DateCol], desc: cols[p.DescCol], amount: -1, debit: -1, credit: -1}

	switch p.AmountMode {
	case amountSingle:
		l.amount = cols[p.AmountCol]
	case amountSplit:
		l.debit = cols[p.DebitCol]
		l.credit = cols[p.CreditCol]
	}

	return l, true
}

// read converts one data row. Rows without a parseable date or a non-zero
// amount (blank lines, page footers, totals) are skipped with ok=false.
func (l layout) read(row []string) (transaction.CreateParams, bool, error) {
	date, err := time.Parse(dateLayout, cell(row, l.date))
	if err != nil {
		return transaction.CreateParams{}, false, nil
	}

	desc := cell(row, l.desc)
	if desc == "" {
		return transaction.CreateParams{}, false, fmt.Errorf("missing description")
	}

	cents, txType, ok := l.money(row)
	if !ok {
		return transaction.CreateParams{}, false, nil
	}

	return transaction.CreateParams{
		Type:        string(txType),
		Amount:      cents,
		OccurredAt:  date.Format(time.DateOnly),
		Description: desc,
	}, true, nil
}

// money returns the unsigned amount in cents and whether it left or entered the account.
func (l layout) money(row []string) (int64, transaction.Type, bool) {
	if l.profile.AmountMode == amountSingle {
		cents, ok := nonZero(cell(row, l.amount))
		if !ok {
			return 0, "", false
		}

		if cents < 0 {
			return -cents, transaction.TypeExpense, true
		}

		return cents, transaction.TypeIncome, true
	}

	if cents, ok := nonZero(cell(row, l.debit)); ok {
		return abs(cents), transaction.TypeExpense, true
	}

	if cents, ok := nonZero(cell(row, l.credit)); ok {
		return abs(cents), transaction.TypeIncome, true
	}

	return 0, "", false
}

func nonZero(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}

	cents, err := parseEuropeanAmount(s)
	if err != nil || cents == 0 {
		return 0, false
	}

	return cents, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
