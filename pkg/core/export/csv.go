package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"financial_forecast/pkg/core/projection"
)

// Headers returns the CSV header row.
func Headers() []string {
	out := make([]string, 0, len(Columns)+1)
	out = append(out, "Year")
	for _, c := range Columns {
		out = append(out, c.Header())
	}
	return out
}

// Row flattens one year into CSV cells.
func Row(fs projection.FinancialStatements) []string {
	out := make([]string, 0, len(Columns)+1)
	out = append(out, strconv.Itoa(fs.Year))
	for _, c := range Columns {
		out = append(out, Round2(c.Value(fs)).StringFixed(2))
	}
	return out
}

// WriteCSV writes one header row and one row per year.
func WriteCSV(w io.Writer, statements []projection.FinancialStatements) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, fs := range statements {
		if err := cw.Write(Row(fs)); err != nil {
			return fmt.Errorf("write csv row for year %d: %w", fs.Year, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
