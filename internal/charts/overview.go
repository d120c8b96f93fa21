// ABOUTME: Stacked three-panel overview chart for the dashboard page
// ABOUTME: Exchange rate, inflation with target line, and policy rate

package charts

import (
	"github.com/datalens/ecb-dashboard/internal/data"
)

// Panel is one row of the overview figure. A panel with no observations
// keeps its title and renders as a blank axis.
type Panel struct {
	Title     string      `json:"title"`
	X         []string    `json:"x,omitempty"`
	Y         []float64   `json:"y,omitempty"`
	Mode      string      `json:"mode,omitempty"`
	Shape     string      `json:"shape,omitempty"`
	TraceName string      `json:"trace_name,omitempty"`
	Decimals  int         `json:"decimals"`
	Color     string      `json:"color,omitempty"`
	Target    *TargetLine `json:"target,omitempty"`
}

// OverviewChart stacks the three indicator panels on a shared time axis.
type OverviewChart struct {
	Title     string  `json:"title"`
	Height    int     `json:"height"`
	GridColor string  `json:"grid_color"`
	Panels    []Panel `json:"panels"`
}

// Overview builds the dashboard figure. Panel order and titles are fixed;
// windows may be nil when a series has never been fetched.
func Overview(exchange, inflation, interest *data.SeriesWindow) *OverviewChart {
	return &OverviewChart{
		Title:     "Financial Indicators Overview",
		Height:    800,
		GridColor: colorGrid,
		Panels: []Panel{
			panel("EUR/USD Exchange Rate", exchange, Panel{
				TraceName: "EUR/USD",
				Mode:      modeLines,
				Decimals:  4,
				Color:     colorPrimary,
			}),
			panel("Inflation Rate (%)", inflation, Panel{
				TraceName: "Inflation",
				Mode:      modeLines,
				Decimals:  1,
				Color:     colorSecondary,
				Target:    ecbTarget("Target"),
			}),
			panel("ECB Main Rate (%)", interest, Panel{
				TraceName: "ECB Rate",
				Mode:      modeLines,
				Shape:     shapeStep,
				Decimals:  2,
				Color:     colorPrimary,
			}),
		},
	}
}

func panel(title string, w *data.SeriesWindow, tmpl Panel) Panel {
	tmpl.Title = title
	if w == nil || len(w.Observations) == 0 {
		// Blank panel: no trace, no target line.
		tmpl.Target = nil
		return tmpl
	}

	tmpl.X = make([]string, 0, len(w.Observations))
	tmpl.Y = make([]float64, 0, len(w.Observations))
	for _, obs := range w.Observations {
		tmpl.X = append(tmpl.X, obs.Period)
		tmpl.Y = append(tmpl.Y, obs.Value)
	}
	return tmpl
}
