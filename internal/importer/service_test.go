package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budget/internal/apperr"
	"github.com/MrJamesThe3rd/budget/internal/importer"
)

func TestParseBank(t *testing.T) {
	b, err := importer.ParseBank(" CGD ")
	require.NoError(t, err)
	assert.Equal(t, importer.BankCGD, b)

	_, err = importer.ParseBank("millennium")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Import(t *testing.T) {
	svc := importer.NewService()

	csv := "Data mov.;Descrição;Montante\n30-01-2026;CAFE;-2,10\n"

	params, err := svc.Import(importer.BankCGD, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, int64(210), params[0].Amount)

	_, err = svc.Import("other", strings.NewReader(csv))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Import(importer.BankCGD, strings.NewReader("just;some;text\n"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
