// Package report composes period reports from transactions.
package report

import (
	"fmt"
	"time"

	"bukukas/internal/aggregate"
	"bukukas/internal/models"
	"bukukas/internal/money"
)

// Fallback labels for rows whose owner or group is missing.
const (
	UnknownUser          = "Unknown"
	NoCategoryLabel      = "Tidak ada kategori"
	NeutralCategoryColor = "#64748b"
)

// PeriodType selects a monthly or yearly report.
type PeriodType string

const (
	Monthly PeriodType = "monthly"
	Yearly  PeriodType = "yearly"
)

// Period identifies the calendar window a report covers.
type Period struct {
	Type  PeriodType
	Year  int
	Month int
}

// NewPeriod fills defaults from now: monthly type, current year and month.
func NewPeriod(typ string, year, month int, now time.Time) Period {
	p := Period{Type: PeriodType(typ), Year: year, Month: month}
	if p.Type != Yearly {
		p.Type = Monthly
	}
	if p.Year == 0 {
		p.Year = now.Year()
	}
	if p.Month == 0 {
		p.Month = int(now.Month())
	}
	return p
}

// Range returns the half-open [from, to) window of the period.
func (p Period) Range() (time.Time, time.Time) {
	if p.Type == Yearly {
		from := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	}
	from := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// Label renders the period as "2025-10" or "2025".
func (p Period) Label() string {
	if p.Type == Yearly {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%d-%02d", p.Year, p.Month)
}

// BucketBy returns the rollup unit matching the period.
func (p Period) BucketBy() aggregate.BucketBy {
	if p.Type == Yearly {
		return aggregate.ByMonthOfYear
	}
	return aggregate.ByDayOfMonth
}

// Row is one transaction as shown in a report table.
type Row struct {
	ID            string                 `json:"id"`
	Date          string                 `json:"date"`
	Description   string                 `json:"description"`
	Amount        money.Amount           `json:"amount"`
	Type          models.TransactionType `json:"type"`
	User          string                 `json:"user"`
	Category      string                 `json:"category"`
	CategoryColor string                 `json:"category_color"`
}

// Summary carries report totals and the period they cover.
type Summary struct {
	aggregate.Totals
	Period     string     `json:"period"`
	PeriodType PeriodType `json:"period_type"`
}

// Report is the composed report payload.
type Report struct {
	Transactions []Row              `json:"transactions"`
	ChartData    []aggregate.Bucket `json:"chart_data"`
	Summary      Summary            `json:"summary"`
}

// Compose projects rows into report rows and totals them. Callers derive
// buckets from the same rows so the table, chart and summary agree.
func Compose(rows []models.Transaction, buckets []aggregate.Bucket, period Period) Report {
	out := make([]Row, 0, len(rows))
	for i := range rows {
		out = append(out, project(&rows[i]))
	}
	if buckets == nil {
		buckets = []aggregate.Bucket{}
	}
	return Report{
		Transactions: out,
		ChartData:    buckets,
		Summary: Summary{
			Totals:     aggregate.Sum(rows),
			Period:     period.Label(),
			PeriodType: period.Type,
		},
	}
}

func project(t *models.Transaction) Row {
	row := Row{
		ID:            t.ID,
		Date:          t.Date.Format("2006-01-02"),
		Description:   t.Description,
		Amount:        t.Amount,
		Type:          t.Type,
		User:          UnknownUser,
		Category:      NoCategoryLabel,
		CategoryColor: NeutralCategoryColor,
	}
	if t.User != nil && t.User.Name != "" {
		row.User = t.User.Name
	}
	if t.TransactionGroup != nil {
		row.Category = t.TransactionGroup.Name
		if t.TransactionGroup.Color != "" {
			row.CategoryColor = t.TransactionGroup.Color
		}
	}
	return row
}
