package cgd

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountCleaner = strings.NewReplacer(
	".", "",
	" ", "",
	"\u00a0", "",
	"€", "",
	"EUR", "",
	",", ".",
)

// parseEuropeanAmount reads a statement amount such as "1.234,56",
// "-588,74 €" or "1 234,56" into cents, rounding half away from zero.
func parseEuropeanAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(amountCleaner.Replace(strings.TrimSpace(s)))
	if err != nil {
		return 0, err
	}

	return d.Shift(2).Round(0).IntPart(), nil
}
