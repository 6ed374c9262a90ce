package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// wholeDollars formats integral prices with thousands grouping and no fraction.
var wholeDollars = money.NewFormatter(0, ".", ",", "$", "$1")

// FormatPrice renders a USD price with a precision that depends on its magnitude:
// four decimals under 0.1, two under 10, grouped thousands above
// (with no fraction when the price is a whole number).
func FormatPrice(price float64) string {
	switch {
	case price < 0.1:
		return fmt.Sprintf("$%.4f", price)
	case price < 10:
		return fmt.Sprintf("$%.2f", price)
	case price == math.Trunc(price):
		return wholeDollars.Format(int64(price))
	default:
		return money.New(int64(math.Round(price*100)), money.USD).Display()
	}
}

// FormatChange renders a percentage change with two decimals. Zero, whatever
// its sign bit, is "0.00%".
func FormatChange(pct float64) string {
	if pct == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatGrowth renders a growth percentage already rounded to two decimals with
// the shortest representation that keeps at least one decimal: 10 -> "10.0%",
// 12.5 -> "12.5%", 3.14 -> "3.14%". A growth that rounds to zero is "0.0%"
// whichever side it came from.
func FormatGrowth(pct float64) string {
	s := decimal.NewFromFloat(pct).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

// roundPct rounds a percentage to two decimals. Rounding applies to the exact
// binary value, ties to even, so 2.675 (stored just below) rounds to 2.67.
func roundPct(pct float64) float64 {
	return decimal.RequireFromString(strconv.FormatFloat(pct, 'f', 2, 64)).InexactFloat64()
}
