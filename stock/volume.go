package stock

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

// FormatVolume renders a share count with Indian scale suffixes, two decimal
// places, rounding half away from zero. The result is for display only.
func FormatVolume(v int64) string {
	switch {
	case v == 0:
		return "0"
	case v >= crore:
		return scaled(v, crore) + " Cr"
	case v >= lakh:
		return scaled(v, lakh) + " L"
	case v >= thousand:
		return scaled(v, thousand) + " K"
	default:
		return strconv.FormatInt(v, 10)
	}
}

func scaled(v, unit int64) string {
	return decimal.NewFromInt(v).Div(decimal.NewFromInt(unit)).StringFixed(2)
}
