package main

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// gasDecimals is the precision of the GAS token.
const gasDecimals = 8

// parseGAS converts decimal GAS amount to datoshi.
func parseGAS(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid GAS amount %q: %w", s, err)
	}

	v := d.Shift(gasDecimals)
	if !v.IsInteger() {
		return 0, fmt.Errorf("GAS amount %s has more than %d decimals", s, gasDecimals)
	}

	if !v.BigInt().IsInt64() {
		return 0, errors.New("GAS amount is out of range")
	}

	return v.IntPart(), nil
}

// formatGAS renders datoshi amount as decimal GAS.
func formatGAS(v int64) string {
	return decimal.New(v, -gasDecimals).StringFixed(gasDecimals)
}
