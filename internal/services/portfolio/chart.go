package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/realvest/internal/models"
)

// RenderChart renders a PNG line chart of the projection.
// Three series: Cash (green), Equity (blue solid) and Debt (gray dashed).
// Returns raw PNG bytes.
func RenderChart(state *models.PortfolioState) ([]byte, error) {
	if state == nil || len(state.Timeline) < 2 {
		n := 0
		if state != nil {
			n = len(state.Timeline)
		}
		return nil, fmt.Errorf("need at least 2 months, got %d", n)
	}

	months := make([]float64, len(state.Timeline))
	cash := make([]float64, len(state.Timeline))
	equity := make([]float64, len(state.Timeline))
	debt := make([]float64, len(state.Timeline))
	for i, snap := range state.Timeline {
		months[i] = float64(snap.Month)
		cash[i] = snap.CashReserves
		equity[i] = snap.TotalEquity
		debt[i] = snap.TotalDebt
	}

	graph := chart.Chart{
		Title:  "Portfolio Projection",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "Month",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Cash",
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("16a34a"), StrokeWidth: 2}, // green-600
				XValues: months,
				YValues: cash,
			},
			chart.ContinuousSeries{
				Name:    "Equity",
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("2563eb"), StrokeWidth: 2.5}, // blue-600
				XValues: months,
				YValues: equity,
			},
			chart.ContinuousSeries{
				Name: "Debt",
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5.0, 3.0},
				},
				XValues: months,
				YValues: debt,
			},
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
