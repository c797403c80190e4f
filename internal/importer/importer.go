package importer

import (
	"io"
	"strings"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

func ParseBank(s string) (Bank, error) {
	b := Bank(strings.ToLower(strings.TrimSpace(s)))

	switch b {
	case BankCGD:
		return b, nil
	}

	return "", apperr.Validation("bank", "unsupported bank")
}

// Importer turns a bank statement into unsaved transactions.
type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
