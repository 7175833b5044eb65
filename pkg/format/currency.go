// Package format renders amounts and percentages the way Finnish rental
// documents write them.
package format

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	euroGrapheme = "€"
	decimalMark  = ","
	thousandMark = " "
)

var (
	wholeEuros = money.NewFormatter(0, decimalMark, thousandMark, euroGrapheme, "1 $")
	euroCents  = money.NewFormatter(2, decimalMark, thousandMark, euroGrapheme, "1 $")
	bareWhole  = money.NewFormatter(0, decimalMark, thousandMark, "", "1")
	bareCents  = money.NewFormatter(2, decimalMark, thousandMark, "", "1")
)

// Euro returns an amount with thousands separators and the euro sign, e.g.
// "1 077 €" or "-12,50 €". Cents are shown only when the amount has them.
func Euro(amount decimal.Decimal) string {
	if isWhole(amount) {
		return wholeEuros.Format(amount.IntPart())
	}
	return euroCents.Format(cents(amount))
}

// SignedEuro is Euro with an explicit "+" for positive amounts.
func SignedEuro(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + Euro(amount)
	}
	return Euro(amount)
}

// MonthlyEuro returns the amount followed by the per-month suffix, e.g. "950 €/kk".
func MonthlyEuro(amount decimal.Decimal) string {
	return Euro(amount) + "/kk"
}

// LetterEuro returns an amount with explicit cents and no separators, e.g.
// "1045,00 €", the way formal notices quote rent.
func LetterEuro(amount decimal.Decimal) string {
	return strings.Replace(amount.StringFixed(2), ".", decimalMark, 1) + " " + euroGrapheme
}

// NumericEuro returns the amount with separators but without a currency sign.
func NumericEuro(amount decimal.Decimal) string {
	if isWhole(amount) {
		return bareWhole.Format(amount.IntPart())
	}
	return bareCents.Format(cents(amount))
}

// Percent returns a one-decimal percentage with a decimal comma, e.g. "13,4 %".
func Percent(value decimal.Decimal) string {
	return strings.Replace(value.StringFixed(1), ".", decimalMark, 1) + " %"
}

func isWhole(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(0))
}

func cents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
