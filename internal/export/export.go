// Package export writes a portfolio projection to spreadsheet formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/realvest/internal/models"
	"github.com/bobmcallan/realvest/internal/services/portfolio"
)

// Sheet names
const (
	SheetTimeline     = "Timeline"
	SheetSummary      = "Summary"
	SheetProperties   = "Properties"
	SheetLoans        = "Loans"
	SheetTransactions = "Transactions"
	SheetSkipped      = "Skipped"
)

var errNoState = errors.New("no portfolio state to export")

var timelineHeaders = []string{
	"Month", "Cash Reserves", "Monthly Income", "Monthly Expenses", "Net Cash Flow",
	"Contribution", "Transaction Cash", "Total Debt", "Total Equity", "Property Value",
	"Accumulated Rent", "Properties", "Loans", "ROI %", "Applied",
}

func timelineRow(s models.MonthSnapshot) []interface{} {
	return []interface{}{
		s.Month, s.CashReserves, s.MonthlyIncome, s.MonthlyExpenses, s.NetCashFlow,
		s.Contribution, s.TransactionCashDelta, s.TotalDebt, s.TotalEquity, s.TotalPropertyValue,
		s.AccumulatedRent, len(s.ActiveProperties), len(s.Loans), s.ROI, strings.Join(s.AppliedTransactions, " "),
	}
}

var summaryHeaders = []string{"Metric", "Value"}

func summaryRows(s *portfolio.Summary) [][]interface{} {
	if s == nil {
		return nil
	}
	return [][]interface{}{
		{"Months", s.Months},
		{"Initial Capital", s.InitialCapital},
		{"Total Contributions", s.TotalContributions},
		{"Cash Reserves", s.CashReserves},
		{"Property Value", s.PropertyValue},
		{"Total Debt", s.TotalDebt},
		{"Total Equity", s.TotalEquity},
		{"Net Worth", s.NetWorth},
		{"Monthly Net Cash Flow", s.MonthlyNetCashFlow},
		{"Accumulated Rent", s.AccumulatedRent},
		{"Loan to Value %", s.LoanToValue},
		{"ROI %", s.ROI},
		{"IRR %", s.IRR},
		{"Lifetime Interest", s.LifetimeInterest},
		{"Properties", s.Properties},
		{"Skipped Transactions", s.Skipped},
	}
}

var propertyHeaders = []string{
	"Property", "Address", "Purchase Month", "Purchase Price", "Current Value", "Monthly Rent",
	"Operating Expenses", "Annual NOI", "Annual Debt Service", "Annual Cash Flow",
	"Cap Rate %", "Cash on Cash %", "DSCR", "ROI %", "Down Payment", "Principal Paydown",
	"Appreciation", "Equity", "LTV %", "In Rehab",
}

func propertyRow(p models.PropertySnapshot, a portfolio.PropertyAnalysis) []interface{} {
	var dscr interface{} = ""
	if a.DSCR != nil {
		dscr = *a.DSCR
	}
	return []interface{}{
		p.PropertyID, p.Address, p.PurchaseMonth, p.PurchasePrice, p.CurrentValue, a.MonthlyRent,
		a.OperatingExpenses, a.AnnualNOI, a.AnnualDebtService, a.AnnualCashFlow,
		a.CapRate, a.CashOnCash, dscr, a.ROI, a.Equity.DownPayment, a.Equity.PrincipalPaydown,
		a.Equity.Appreciation, a.Equity.Total, a.Equity.LoanToValue, a.InRehab,
	}
}

var loanHeaders = []string{
	"Loan", "Property", "Origination Month", "Original Amount", "Rate %", "Term Months",
	"Monthly Payment", "Payments Made", "Balance", "Lifetime Interest", "Mortgage",
}

func loanRow(l portfolio.LoanAnalysis) []interface{} {
	return []interface{}{
		l.LoanID, l.PropertyID, l.OriginationMonth, l.OriginalAmount, l.RatePercent, l.TermMonths,
		l.MonthlyPayment, l.PaymentsMade, l.Balance, l.TotalInterest, l.Mortgage,
	}
}

var transactionHeaders = []string{"ID", "Month", "Kind", "Property", "Amount", "Payload"}

func transactionRow(tx models.Transaction) ([]interface{}, error) {
	payload, err := json.Marshal(tx.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction %s: %w", tx.ID, err)
	}
	return []interface{}{tx.ID, tx.Month, string(tx.Kind()), tx.PropertyRef(), amount(tx), string(payload)}, nil
}

// amount is the headline figure of a transaction
func amount(tx models.Transaction) float64 {
	switch p := tx.Payload.(type) {
	case models.PurchaseProperty:
		return p.PurchasePrice
	case models.SellProperty:
		return p.SalePrice
	case models.OriginateLoan:
		return p.LoanAmount
	}
	return 0
}

var skippedHeaders = []string{"Transaction", "Month", "Kind", "Reason", "Detail"}

func skippedRow(s models.SkippedTransaction) []interface{} {
	return []interface{}{s.TransactionID, s.Month, string(s.Kind), string(s.Reason), s.Detail}
}

// WriteXLSX writes one workbook with the timeline, a summary of the final
// month, per-property and per-loan metrics at the final month, the
// transactions and the skipped transactions.
func WriteXLSX(w io.Writer, state *models.PortfolioState) error {
	if state == nil {
		return errNoState
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTimeline); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetProperties, SheetLoans, SheetTransactions, SheetSkipped} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	rows := make([][]interface{}, 0, len(state.Timeline))
	for _, s := range state.Timeline {
		rows = append(rows, timelineRow(s))
	}
	if err := writeSheet(f, SheetTimeline, timelineHeaders, rows, header); err != nil {
		return err
	}
	if len(rows) > 0 {
		// Cash Reserves through Accumulated Rent
		last, _ := excelize.CoordinatesToCellName(11, len(rows)+1)
		if err := f.SetCellStyle(SheetTimeline, "B2", last, money); err != nil {
			return fmt.Errorf("failed to style timeline: %w", err)
		}
	}

	if err := writeSheet(f, SheetSummary, summaryHeaders, summaryRows(portfolio.Summarize(state)), header); err != nil {
		return err
	}

	rows = rows[:0]
	if final := state.Final(); final != nil {
		for i, a := range portfolio.AnalyzeProperties(state.Simulation, *final) {
			rows = append(rows, propertyRow(final.ActiveProperties[i], a))
		}
	}
	if err := writeSheet(f, SheetProperties, propertyHeaders, rows, header); err != nil {
		return err
	}

	rows = rows[:0]
	if final := state.Final(); final != nil {
		for _, l := range portfolio.AnalyzeLoans(*final) {
			rows = append(rows, loanRow(l))
		}
	}
	if err := writeSheet(f, SheetLoans, loanHeaders, rows, header); err != nil {
		return err
	}

	rows = rows[:0]
	for _, tx := range state.Transactions {
		row, err := transactionRow(tx)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if err := writeSheet(f, SheetTransactions, transactionHeaders, rows, header); err != nil {
		return err
	}

	rows = rows[:0]
	for _, s := range state.Skipped {
		rows = append(rows, skippedRow(s))
	}
	if err := writeSheet(f, SheetSkipped, skippedHeaders, rows, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", sheet, err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

// WriteCSV writes the timeline as CSV with amounts to two decimals.
func WriteCSV(w io.Writer, state *models.PortfolioState) error {
	if state == nil {
		return errNoState
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(timelineHeaders); err != nil {
		return err
	}
	for _, s := range state.Timeline {
		row := timelineRow(s)
		record := make([]string, len(row))
		for i, v := range row {
			switch v := v.(type) {
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', 2, 64)
			case int:
				record[i] = strconv.Itoa(v)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
