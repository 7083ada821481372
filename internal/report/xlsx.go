package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	transactionsSheet = "Transaksi"
	summarySheet      = "Ringkasan"
)

// WriteXLSX renders r as a workbook with a transactions sheet and a summary sheet.
func WriteXLSX(r Report, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(transactionsSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	headers := []any{"Tanggal", "Deskripsi", "Tipe", "Jumlah", "Pengguna", "Kategori"}
	if err := f.SetSheetRow(transactionsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range r.Transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.Date, row.Description, string(row.Type), row.Amount.Float64(), row.User, row.Category}
		if err := f.SetSheetRow(transactionsSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(transactionsSheet, "A", "A", 12)
	_ = f.SetColWidth(transactionsSheet, "B", "B", 40)
	_ = f.SetColWidth(transactionsSheet, "C", "C", 10)
	_ = f.SetColWidth(transactionsSheet, "D", "D", 15)
	_ = f.SetColWidth(transactionsSheet, "E", "F", 20)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	summary := [][]any{
		{"Periode", r.Summary.Period},
		{"Jenis Periode", string(r.Summary.PeriodType)},
		{"Total Pemasukan", r.Summary.TotalIncome.Float64()},
		{"Total Pengeluaran", r.Summary.TotalExpense.Float64()},
		{"Saldo", r.Summary.Balance.Float64()},
		{"Jumlah Transaksi", r.Summary.TransactionCount},
	}
	for i, values := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 20)

	return f.Write(w)
}
