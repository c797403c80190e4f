package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/importer/cgd"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Service struct {
	importers map[Bank]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Bank]Importer{
			BankCGD: cgd.NewParser(),
		},
	}
}

// Import parses a statement from bank. Statements that cannot be read are
// reported as validation errors since they come straight from the user.
func (s *Service) Import(bank Bank, r io.Reader) ([]transaction.CreateParams, error) {
	importer, ok := s.importers[bank]
	if !ok {
		return nil, apperr.Validation("bank", fmt.Sprintf("unknown bank: %s", bank))
	}

	params, err := importer.Parse(r)
	if err != nil {
		return nil, apperr.Validation("file", err.Error())
	}

	return params, nil
}
