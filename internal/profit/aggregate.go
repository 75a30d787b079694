package profit

import "math"

// Trunc2 truncates toward negative infinity to two decimal places. The
// display layer floors figures the same way, so the aggregated total
// matches the sum of the displayed per-row figures exactly.
func Trunc2(x float64) float64 {
	return math.Floor(x*100) / 100
}

// Aggregate folds per-symbol rows into the portfolio's net profit: each
// row contributes its unrealized profit plus its last sell proceeds
// truncated to two decimals.
func Aggregate(rows []Row) float64 {
	var total float64
	for _, r := range rows {
		total += r.UnrealizedProfit + Trunc2(r.LastSellProceeds)
	}
	return total
}
