package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pos_service/internal/domain"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Transaksi"

var headers = []string{"Tanggal", "Waktu", "ID", "Pelanggan", "Metode", "Item", "Total"}

type History struct {
	Title        string
	Location     *time.Location
	Transactions []domain.Transaction
	TotalRevenue int64
	CashRevenue  int64
	QrisRevenue  int64
}

// WriteHistory writes h as a single-sheet workbook: a title row, a header
// row, one row per transaction and the revenue totals underneath.
func WriteHistory(w io.Writer, h History) error {
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellValue(SheetName, "A1", h.Title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", header, err)
		}
	}

	row := 3
	for _, tx := range h.Transactions {
		created := tx.CreatedAt.In(loc)
		values := []interface{}{
			created.Format("02/01/2006"),
			created.Format("15.04.05"),
			tx.ID,
			tx.CustomerName,
			string(tx.PaymentMethod),
			describeItems(tx.Items),
			tx.TotalAmount,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write transaction %s: %w", tx.ID, err)
		}
		row++
	}

	row++
	totals := []struct {
		label string
		value int64
	}{
		{"TOTAL", h.TotalRevenue},
		{"CASH", h.CashRevenue},
		{"QRIS", h.QrisRevenue},
	}
	for _, t := range totals {
		if err := f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), t.label); err != nil {
			return fmt.Errorf("write %s label: %w", t.label, err)
		}
		if err := f.SetCellValue(SheetName, fmt.Sprintf("G%d", row), t.value); err != nil {
			return fmt.Errorf("write %s value: %w", t.label, err)
		}
		row++
	}

	f.SetColWidth(SheetName, "A", "B", 12)
	f.SetColWidth(SheetName, "C", "C", 38)
	f.SetColWidth(SheetName, "D", "D", 20)
	f.SetColWidth(SheetName, "E", "E", 8)
	f.SetColWidth(SheetName, "F", "F", 40)
	f.SetColWidth(SheetName, "G", "G", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func describeItems(items []domain.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}
