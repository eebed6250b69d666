package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/ratios"
)

// Sheet names of the workbook, in tab order.
const (
	SheetPnL      = "P&L"
	SheetBalance  = "Balance Sheet"
	SheetCashFlow = "Cash Flow"
	SheetRatios   = "Ratios"
)

// BuildWorkbook lays out one sheet per statement with line items as rows and years as columns.
// A nil yearRatios skips the ratio sheet.
func BuildWorkbook(statements []projection.FinancialStatements, yearRatios []ratios.YearRatios) (*excelize.File, error) {
	f := excelize.NewFile()

	// Rename the default sheet rather than leaving an empty Sheet1 behind
	if err := f.SetSheetName("Sheet1", SheetPnL); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetBalance, SheetCashFlow} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	sheets := []struct {
		name      string
		statement string
	}{
		{SheetPnL, "P&L"},
		{SheetBalance, "BS"},
		{SheetCashFlow, "CFS"},
	}
	for _, s := range sheets {
		if err := writeStatementSheet(f, s.name, ColumnsFor(s.statement), statements); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if yearRatios != nil {
		if _, err := f.NewSheet(SheetRatios); err != nil {
			return nil, err
		}
		if err := writeRatioSheet(f, yearRatios); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", SheetRatios, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX streams the workbook to w.
func WriteXLSX(w io.Writer, statements []projection.FinancialStatements, yearRatios []ratios.YearRatios) error {
	f, err := BuildWorkbook(statements, yearRatios)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to a file path.
func SaveXLSX(path string, statements []projection.FinancialStatements, yearRatios []ratios.YearRatios) error {
	f, err := BuildWorkbook(statements, yearRatios)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeYearHeader(f *excelize.File, sheet string, years []int) error {
	if err := f.SetCellValue(sheet, "A1", "Line Item"); err != nil {
		return err
	}
	for i, y := range years {
		if err := f.SetCellValue(sheet, cell(i+2, 1), fmt.Sprintf("Year %d", y)); err != nil {
			return err
		}
	}
	return nil
}

func writeStatementSheet(f *excelize.File, sheet string, cols []Column, statements []projection.FinancialStatements) error {
	years := make([]int, len(statements))
	for i, fs := range statements {
		years[i] = fs.Year
	}
	if err := writeYearHeader(f, sheet, years); err != nil {
		return err
	}

	for r, c := range cols {
		row := r + 2
		if err := f.SetCellValue(sheet, cell(1, row), c.Field); err != nil {
			return err
		}
		for i, fs := range statements {
			if err := f.SetCellValue(sheet, cell(i+2, row), Round2(c.Value(fs)).InexactFloat64()); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRatioSheet(f *excelize.File, yearRatios []ratios.YearRatios) error {
	years := make([]int, len(yearRatios))
	for i, r := range yearRatios {
		years[i] = r.Year
	}
	if err := writeYearHeader(f, SheetRatios, years); err != nil {
		return err
	}
	if len(yearRatios) == 0 {
		return nil
	}

	for r, named := range yearRatios[0].Entries() {
		row := r + 2
		if err := f.SetCellValue(SheetRatios, cell(1, row), named.Name); err != nil {
			return err
		}
		for i, yr := range yearRatios {
			var v interface{}
			ratio := yr.Entries()[r].Ratio
			switch ratio.Status {
			case ratios.StatusOK:
				v = decimal.NewFromFloat(ratio.Value).Round(4).InexactFloat64()
			case ratios.StatusInfinite:
				v = "∞"
			default:
				v = "N/A"
			}
			if err := f.SetCellValue(SheetRatios, cell(i+2, row), v); err != nil {
				return err
			}
		}
	}
	return nil
}
