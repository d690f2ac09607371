package query

import (
	"cmp"
	"slices"

	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// CategoryGroup is the inventory of one category.
type CategoryGroup struct {
	Category string       `json:"category"`
	Items    []model.Item `json:"items"`
}

// DayGroup is the sales of one day.
type DayGroup struct {
	Date  string       `json:"date"`
	Sales []model.Sale `json:"sales"`
}

// CompareCategories orders the known categories by display priority ahead
// of any other category, which are ordered alphabetically.
func CompareCategories(a, b string) int {
	ia, ib := slices.Index(model.CategoryOrder, a), slices.Index(model.CategoryOrder, b)
	switch {
	case ia >= 0 && ib >= 0:
		return cmp.Compare(ia, ib)
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	}
	return cmp.Compare(a, b)
}

// GroupItemsByCategory groups items by type. Items keep their relative
// order within a group.
func GroupItemsByCategory(items []model.Item) []CategoryGroup {
	var groups []CategoryGroup
	index := map[string]int{}
	for _, it := range items {
		i, ok := index[it.Type]
		if !ok {
			i = len(groups)
			index[it.Type] = i
			groups = append(groups, CategoryGroup{Category: it.Type})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	slices.SortFunc(groups, func(a, b CategoryGroup) int {
		return CompareCategories(a.Category, b.Category)
	})
	return groups
}

// SortSalesNewestFirst returns the sales ordered by date, newest first.
// Sales on the same day keep their relative order.
func SortSalesNewestFirst(sales []model.Sale) []model.Sale {
	out := slices.Clone(sales)
	slices.SortStableFunc(out, func(a, b model.Sale) int {
		return cmp.Compare(b.SaleDate, a.SaleDate)
	})
	return out
}

// GroupSalesByDate groups sales by day, newest day first, in the same order
// as SortSalesNewestFirst.
func GroupSalesByDate(sales []model.Sale) []DayGroup {
	var groups []DayGroup
	for _, s := range SortSalesNewestFirst(sales) {
		if n := len(groups); n > 0 && groups[n-1].Date == s.SaleDate {
			groups[n-1].Sales = append(groups[n-1].Sales, s)
			continue
		}
		groups = append(groups, DayGroup{Date: s.SaleDate, Sales: []model.Sale{s}})
	}
	return groups
}
