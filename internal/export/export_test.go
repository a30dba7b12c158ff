package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/realvest/internal/common"
	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
)

func testState() *models.PortfolioState {
	return &models.PortfolioState{
		Simulation: models.DefaultSimulation(),
		Transactions: []models.Transaction{
			{ID: "p1", Month: 0, Payload: models.PurchaseProperty{PropertyID: "Rental 1", PurchasePrice: 65000, DownPaymentPercent: 20, TermYears: 30}},
			{ID: "s1", Month: 40, Payload: models.NewSellProperty("Rental 1", 0)},
		},
		Timeline: []models.MonthSnapshot{
			{Month: 0, CashReserves: 37000, TotalDebt: 52000, TotalEquity: 13000, TotalPropertyValue: 65000, AppliedTransactions: []string{"p1"}},
			{
				Month: 1, CashReserves: 37010.5, MonthlyIncome: 1000, MonthlyExpenses: 989.5, NetCashFlow: 10.5, TotalDebt: 51950.12, ROI: 0.02,
				Contribution: 0, TotalPropertyValue: 65000, TotalEquity: 13049.88,
				ActiveProperties: []models.PropertySnapshot{{
					PropertyID: "Rental 1", PurchasePrice: 65000, CurrentValue: 65000, MonthlyRent: 1000,
					DownPayment: 13000, CashInvested: 13000, MortgageBalance: 51950.12, MonthlyPayment: 345.96, Equity: 13049.88,
				}},
				Loans: []models.LoanSnapshot{{
					LoanID: "p1", PropertyID: "Rental 1", OriginalAmount: 52000, RatePercent: 7, TermMonths: 360,
					Balance: 51950.12, MonthlyPayment: 345.96, Mortgage: true,
				}},
			},
		},
		Skipped: []models.SkippedTransaction{
			{TransactionID: "s1", Month: 40, Kind: models.KindSellProperty, Reason: models.SkipBeyondHorizon, Detail: "month 40 is after the 1-month horizon"},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testState()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTimeline, SheetSummary, SheetProperties, SheetLoans, SheetTransactions, SheetSkipped}, f.GetSheetList())

	rows, err := f.GetRows(SheetTimeline, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, timelineHeaders, rows[0])
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "37000", rows[1][1])
	assert.Equal(t, "p1", rows[1][14])
	assert.Equal(t, "51950.12", rows[2][7])

	rows, err = f.GetRows(SheetSummary, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 17)
	assert.Equal(t, []string{"Months", "1"}, rows[1])
	assert.Equal(t, []string{"Net Worth", "50060.38"}, rows[8])
	interest := common.RoundCents(finance.TotalInterest(52000, 7, 30))
	assert.Equal(t, []string{"Lifetime Interest", strconv.FormatFloat(interest, 'f', -1, 64)}, rows[14])

	rows, err = f.GetRows(SheetProperties, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, propertyHeaders, rows[0])
	assert.Equal(t, []string{"Rental 1", "", "0", "65000", "65000", "1000", "199.17", "8650"}, rows[1][:8])
	assert.Equal(t, "13.31", rows[1][10], "cap rate")
	assert.Equal(t, "2.08", rows[1][12], "DSCR")

	rows, err = f.GetRows(SheetLoans, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"p1", "Rental 1", "0", "52000", "7", "360", "345.96", "1", "51950.12"}, rows[1][:9])

	rows, err = f.GetRows(SheetTransactions, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"p1", "0", "purchase_property", "Rental 1", "65000"}, rows[1][:5])
	assert.Contains(t, rows[2][5], `"selling_cost_percent":6`)

	rows, err = f.GetRows(SheetSkipped)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"s1", "40", "sell_property", "beyond_horizon", "month 40 is after the 1-month horizon"}, rows[1])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testState()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, timelineHeaders, records[0])
	assert.Equal(t, []string{"1", "37010.50", "1000.00", "989.50", "10.50"}, records[2][:5])
	assert.Equal(t, "0", records[2][11])
	assert.Equal(t, "", records[2][14])
}

func TestExportNilState(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteXLSX(&buf, nil))
	assert.Error(t, WriteCSV(&buf, nil))
}

func TestWriteXLSX_NoHoldings(t *testing.T) {
	state := &models.PortfolioState{
		Simulation: models.DefaultSimulation(),
		Timeline:   []models.MonthSnapshot{{Month: 0, CashReserves: 1000}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, state))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	for _, sheet := range []string{SheetProperties, SheetLoans} {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		assert.Len(t, rows, 1, "%s has only its header", sheet)
	}
}
