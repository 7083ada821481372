// Package aggregate computes totals and period buckets over transactions.
package aggregate

import (
	"sort"

	"bukukas/internal/models"
	"bukukas/internal/money"
)

// Totals summarizes a set of transactions.
type Totals struct {
	TotalIncome      money.Amount `json:"total_income"`
	TotalExpense     money.Amount `json:"total_expense"`
	Balance          money.Amount `json:"balance"`
	TransactionCount int64        `json:"transaction_count"`
}

// Add folds one transaction into t.
func (t *Totals) Add(typ models.TransactionType, amount money.Amount) {
	switch typ {
	case models.TransactionTypeIncome:
		t.TotalIncome += amount
	case models.TransactionTypeExpense:
		t.TotalExpense += amount
	}
	t.TransactionCount++
	t.Balance = t.TotalIncome - t.TotalExpense
}

// Sum totals rows. An empty input yields zero totals.
func Sum(rows []models.Transaction) Totals {
	var t Totals
	for i := range rows {
		t.Add(rows[i].Type, rows[i].Amount)
	}
	return t
}

// BucketBy selects the calendar unit rows are grouped by.
type BucketBy int

const (
	ByDayOfMonth BucketBy = iota
	ByMonthOfYear
)

// Bucket holds the totals of one period.
type Bucket struct {
	Period           int          `json:"period"`
	Income           money.Amount `json:"income"`
	Expense          money.Amount `json:"expense"`
	TransactionCount int64        `json:"transaction_count"`
}

func (by BucketBy) key(row *models.Transaction) int {
	if by == ByMonthOfYear {
		return int(row.Date.Month())
	}
	return row.Date.Day()
}

// Rollup groups rows by day of month or month of year. Only periods present
// in rows are returned, in ascending order.
func Rollup(rows []models.Transaction, by BucketBy) []Bucket {
	index := make(map[int]*Bucket)
	for i := range rows {
		row := &rows[i]
		k := by.key(row)
		b, ok := index[k]
		if !ok {
			b = &Bucket{Period: k}
			index[k] = b
		}
		switch row.Type {
		case models.TransactionTypeIncome:
			b.Income += row.Amount
		case models.TransactionTypeExpense:
			b.Expense += row.Amount
		}
		b.TransactionCount++
	}

	out := make([]Bucket, 0, len(index))
	for _, b := range index {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}
