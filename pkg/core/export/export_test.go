package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"financial_forecast/pkg/core/export"
	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/projection/projectiontest"
	"financial_forecast/pkg/core/ratios"
)

func basicRun(t *testing.T, years int) *projection.Projection {
	t.Helper()
	proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), years)
	require.NoError(t, err)
	return proj
}

func TestHeaders(t *testing.T) {
	h := export.Headers()
	require.Len(t, h, 1+11+14+17)
	assert.Equal(t, "Year", h[0])
	assert.Equal(t, "P&L: Revenue", h[1])
	assert.Equal(t, "P&L: NetIncome", h[11])
	assert.Equal(t, "BS: Cash", h[12])
	assert.Equal(t, "BS: TotalLiabilitiesAndEquity", h[25])
	assert.Equal(t, "CFS: NetIncome", h[26])
	assert.Equal(t, "CFS: EndingCash", h[len(h)-1])
}

func TestWriteCSV(t *testing.T) {
	proj := basicRun(t, 3)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, proj.Statements))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header, y1 := records[0], records[1]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	assert.Equal(t, "1", y1[col["Year"]])
	assert.Equal(t, "1100.00", y1[col["P&L: Revenue"]])
	assert.Equal(t, "80.63", y1[col["P&L: NetIncome"]])
	assert.Equal(t, "93.90", y1[col["BS: Cash"]])
	assert.Equal(t, "150.00", y1[col["BS: Debt"]])
	// AR rose 40.41, a use of cash
	assert.Equal(t, "-40.41", y1[col["CFS: ChangeInAR"]])
	assert.Equal(t, "-38.49", y1[col["CFS: ChangeInInventory"]])
	assert.Equal(t, "21.37", y1[col["CFS: ChangeInAP"]])
	assert.Equal(t, "55.00", y1[col["CFS: CapitalExpenditures"]])
	assert.Equal(t, "3", records[3][col["Year"]])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "80.63", export.Round2(80.625).StringFixed(2))
	assert.Equal(t, "-0.01", export.Round2(-0.005).StringFixed(2))
	assert.Equal(t, "0.00", export.Round2(0.004).StringFixed(2))
}

func TestWriteXLSX(t *testing.T) {
	proj := basicRun(t, 2)

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, proj.Statements, ratios.ForProjection(proj)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		[]string{export.SheetPnL, export.SheetBalance, export.SheetCashFlow, export.SheetRatios},
		f.GetSheetList())

	v, err := f.GetCellValue(export.SheetPnL, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Year 1", v)

	v, err = f.GetCellValue(export.SheetPnL, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Revenue", v)

	v, err = f.GetCellValue(export.SheetPnL, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1100", v)

	v, err = f.GetCellValue(export.SheetBalance, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Cash", v)

	v, err = f.GetCellValue(export.SheetRatios, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Gross Profit Margin", v)

	v, err = f.GetCellValue(export.SheetRatios, "C2")
	require.NoError(t, err)
	assert.Equal(t, "0.4", v)
}

func TestBuildWorkbook_NoRatios(t *testing.T) {
	proj := basicRun(t, 1)

	f, err := export.BuildWorkbook(proj.Statements, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetPnL, export.SheetBalance, export.SheetCashFlow}, f.GetSheetList())
}
