package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney reads amounts such as "$1,250.50" into a two-place decimal.
func ParseMoney(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid amount %q: must not be negative", text)
	}
	return amount.Round(2), nil
}

// ParsePercent reads "75%" or "75" as a fraction of one hundred.
func ParsePercent(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(text), "%")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	pct, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid percentage %q: %w", text, err)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("invalid percentage %q: must be between 0 and 100", text)
	}
	return pct, nil
}
