// Package stats derives the dashboard's summary figures from the currently
// loaded page of products. The product count comes from the server-reported
// total when the backend supplied one; averages and totals are over the
// loaded page only, since that is all the client holds.
package stats

import (
	"github.com/ihorko/product-dashboard/pkg/model"
	"github.com/shopspring/decimal"
)

// Summary holds the derived figures shown above the product table.
type Summary struct {
	TotalProducts int
	AveragePrice  float64
	CategoryCount int
	TotalValue    float64
}

// Summarize computes a Summary from the loaded page. serverTotal is the
// backend's pagination total; pass 0 when unknown and the page length is used
// instead. Recomputed on every render, so it stays a pure function.
func Summarize(products []model.Product, serverTotal int) Summary {
	total := serverTotal
	if total <= 0 {
		total = len(products)
	}

	summary := Summary{TotalProducts: total}
	if len(products) == 0 {
		return summary
	}

	sum := decimal.Zero
	categories := map[string]struct{}{}
	for _, p := range products {
		sum = sum.Add(decimal.NewFromFloat(p.Price))
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
	}

	summary.TotalValue, _ = sum.Round(2).Float64()
	summary.AveragePrice, _ = sum.Div(decimal.NewFromInt(int64(len(products)))).Round(2).Float64()
	summary.CategoryCount = len(categories)
	return summary
}
