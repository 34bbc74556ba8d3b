package circulation

import (
	"errors"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the precision of every stored amount.
const moneyPlaces = 2

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(moneyPlaces)
}

// FormatMoney renders an amount with exactly two decimal places.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(moneyPlaces)
}

// ParseMoney parses a decimal string such as "12.5" and rounds it to cents.
func ParseMoney(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Join(ErrInvalidAmount, err)
	}

	return RoundMoney(amount), nil
}
