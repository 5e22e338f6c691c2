package stats_test

import (
	"testing"

	"github.com/ihorko/product-dashboard/pkg/dashclient/stats"
	"github.com/ihorko/product-dashboard/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	products := []model.Product{
		{ID: "p-1", Title: "Desk Lamp", Price: 19.99, Category: "lighting"},
		{ID: "p-2", Title: "Floor Lamp", Price: 49.99, Category: "lighting"},
		{ID: "p-3", Title: "Mystery Box", Price: 10.02},
		{ID: "p-4", Title: "Mug", Price: 8.00, Category: "kitchen"},
	}

	summary := stats.Summarize(products, 23)

	assert.Equal(t, 23, summary.TotalProducts, "count uses the server-reported total")
	assert.Equal(t, 88.00, summary.TotalValue)
	assert.Equal(t, 22.00, summary.AveragePrice)
	assert.Equal(t, 2, summary.CategoryCount, "missing category is excluded")
}

func TestSummarizeFallsBackToPageLength(t *testing.T) {
	products := []model.Product{
		{ID: "p-1", Price: 5},
		{ID: "p-2", Price: 15},
	}

	summary := stats.Summarize(products, 0)
	assert.Equal(t, 2, summary.TotalProducts)
	assert.Equal(t, 10.00, summary.AveragePrice)
}

func TestSummarizeEmptyPage(t *testing.T) {
	summary := stats.Summarize(nil, 0)

	assert.Equal(t, 0, summary.TotalProducts)
	assert.Equal(t, 0.0, summary.AveragePrice, "empty page must not produce NaN")
	assert.Equal(t, 0.0, summary.TotalValue)
	assert.Equal(t, 0, summary.CategoryCount)
}

func TestSummarizeCategoriesAreCaseSensitive(t *testing.T) {
	products := []model.Product{
		{ID: "p-1", Price: 1, Category: "Lighting"},
		{ID: "p-2", Price: 1, Category: "lighting"},
	}

	summary := stats.Summarize(products, 0)
	assert.Equal(t, 2, summary.CategoryCount)
}
