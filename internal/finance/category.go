// Package finance holds the client-side rules around transactions and
// categories: form validation, colour lookup and period filters.
package finance

import (
	"sort"

	"github.com/theirongolddev/poupa/internal/api"
)

// Fallback colours when a transaction's category is not in the loaded set.
const (
	FallbackIncomeColor  = "#4CAF50"
	FallbackExpenseColor = "#F44336"
	FallbackColor        = "#9E9E9E"
)

// CategoryIndex maps category id to category.
type CategoryIndex map[int]api.Category

// IndexCategories builds an index over cats.
func IndexCategories(cats []api.Category) CategoryIndex {
	idx := make(CategoryIndex, len(cats))
	for _, c := range cats {
		idx[c.ID] = c
	}
	return idx
}

// Lookup finds the category of tx, preferring the loaded set over the copy
// embedded in the transaction.
func (idx CategoryIndex) Lookup(tx api.Transaction) (api.Category, bool) {
	if c, ok := idx[tx.CategoryID]; ok {
		return c, true
	}
	if tx.Category != nil {
		return *tx.Category, true
	}
	return api.Category{}, false
}

// Color returns the display colour for tx.
func (idx CategoryIndex) Color(tx api.Transaction) string {
	if c, ok := idx.Lookup(tx); ok && c.Color != "" {
		return c.Color
	}
	switch tx.Type {
	case api.TypeIncome:
		return FallbackIncomeColor
	case api.TypeExpense:
		return FallbackExpenseColor
	default:
		return FallbackColor
	}
}

// Name returns the category name for tx, or "-" when unknown.
func (idx CategoryIndex) Name(tx api.Transaction) string {
	if c, ok := idx.Lookup(tx); ok && c.Name != "" {
		return c.Name
	}
	return "-"
}

// CategoriesOfType returns the categories usable for a transaction type,
// sorted by name.
func CategoriesOfType(cats []api.Category, typ string) []api.Category {
	var out []api.Category
	for _, c := range cats {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Totals sums income and expenses of txs locally. Types other than income
// and expense are ignored.
func Totals(txs []api.Transaction) (income, expenses float64) {
	for _, tx := range txs {
		switch tx.Type {
		case api.TypeIncome:
			income += tx.Amount
		case api.TypeExpense:
			expenses += tx.Amount
		}
	}
	return income, expenses
}

// CategoryShare is one row of a per-category breakdown.
type CategoryShare struct {
	Name   string
	Amount float64
	Pct    float64
}

// Breakdown turns a summary's name→amount map into rows sorted by amount.
func Breakdown(byCategory map[string]float64) []CategoryShare {
	var total float64
	for _, v := range byCategory {
		total += v
	}
	out := make([]CategoryShare, 0, len(byCategory))
	for name, v := range byCategory {
		share := CategoryShare{Name: name, Amount: v}
		if total > 0 {
			share.Pct = v / total
		}
		out = append(out, share)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
