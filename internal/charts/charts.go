// ABOUTME: Builds the chart view models the browser renders with Plotly
// ABOUTME: One builder per indicator plus the stacked dashboard overview

package charts

import (
	"github.com/datalens/ecb-dashboard/internal/data"
)

// Theme colors shared by every chart.
const (
	colorPrimary   = "#1f77b4"            // blue, main data
	colorSecondary = "#ff7f0e"            // orange, comparisons
	colorTarget    = "#d62728"            // red, targets and thresholds
	colorGrid      = "rgba(128,128,128,0.2)"
)

// Trace draw modes and line shapes, as Plotly spells them.
const (
	modeLines        = "lines"
	modeLinesMarkers = "lines+markers"
	shapeStep        = "hv"
)

// RangeButton is one entry of the range-selector row above a time axis.
type RangeButton struct {
	Count    int    `json:"count,omitempty"`
	Label    string `json:"label"`
	Step     string `json:"step"`
	StepMode string `json:"stepmode,omitempty"`
}

// RangeButtons is the selector row shared by all time series charts.
func RangeButtons() []RangeButton {
	return []RangeButton{
		{Count: 7, Label: "7D", Step: "day", StepMode: "backward"},
		{Count: 30, Label: "30D", Step: "day", StepMode: "backward"},
		{Count: 3, Label: "3M", Step: "month", StepMode: "backward"},
		{Count: 6, Label: "6M", Step: "month", StepMode: "backward"},
		{Count: 1, Label: "1Y", Step: "year", StepMode: "backward"},
		{Label: "All", Step: "all"},
	}
}

// TargetLine is a dashed horizontal reference line with a label.
type TargetLine struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	Dash  string  `json:"dash"`
}

// Chart is the single-series view model serialized to the browser. The
// embedded page script translates it into a Plotly figure; nothing here
// is Plotly-specific beyond mode and shape vocabulary.
type Chart struct {
	Empty   bool   `json:"empty,omitempty"`
	Message string `json:"message,omitempty"`

	Title        string        `json:"title,omitempty"`
	X            []string      `json:"x,omitempty"`
	Y            []float64     `json:"y,omitempty"`
	Mode         string        `json:"mode,omitempty"`
	Shape        string        `json:"shape,omitempty"`
	TraceName    string        `json:"trace_name,omitempty"`
	Decimals     int           `json:"decimals"`
	Unit         string        `json:"unit,omitempty"`
	Color        string        `json:"color,omitempty"`
	YAxisTitle   string        `json:"y_axis_title,omitempty"`
	GridColor    string        `json:"grid_color,omitempty"`
	Height       int           `json:"height"`
	Target       *TargetLine   `json:"target,omitempty"`
	RangeButtons []RangeButton `json:"range_buttons,omitempty"`
}

// LineOptions configures a Line chart. Zero values fall back to a plain
// blue line with no reference line.
type LineOptions struct {
	Title      string
	TraceName  string
	Mode       string
	Shape      string
	Decimals   int
	Color      string
	YAxisTitle string
	Target     *TargetLine
}

// Line builds a time series chart from a windowed read. Observations are
// already period-sorted by the store, so x and y come out chronological.
func Line(w *data.SeriesWindow, opts LineOptions) *Chart {
	x := make([]string, 0, len(w.Observations))
	y := make([]float64, 0, len(w.Observations))
	for _, obs := range w.Observations {
		x = append(x, obs.Period)
		y = append(y, obs.Value)
	}

	mode := opts.Mode
	if mode == "" {
		mode = modeLines
	}
	color := opts.Color
	if color == "" {
		color = colorPrimary
	}

	unit := ""
	if w.Series != nil {
		unit = w.Series.Unit
	}

	return &Chart{
		Title:        opts.Title,
		X:            x,
		Y:            y,
		Mode:         mode,
		Shape:        opts.Shape,
		TraceName:    opts.TraceName,
		Decimals:     opts.Decimals,
		Unit:         unit,
		Color:        color,
		YAxisTitle:   opts.YAxisTitle,
		GridColor:    colorGrid,
		Height:       500,
		Target:       opts.Target,
		RangeButtons: RangeButtons(),
	}
}

// Empty is the fallback chart rendered when a series has no observations
// yet, e.g. before the first refresh.
func Empty(message string) *Chart {
	return &Chart{
		Empty:   true,
		Message: message,
		Height:  400,
	}
}

// ecbTarget is the 2% inflation reference line.
func ecbTarget(label string) *TargetLine {
	return &TargetLine{
		Value: data.InflationTarget,
		Label: label,
		Color: colorTarget,
		Dash:  "dash",
	}
}

// ExchangeRate builds the EUR/USD chart: a plain line at four decimals.
func ExchangeRate(w *data.SeriesWindow) *Chart {
	if w == nil || len(w.Observations) == 0 {
		return Empty("No EUR/USD exchange rate data available")
	}
	return Line(w, LineOptions{
		Title:      "EUR/USD Exchange Rate",
		TraceName:  "EUR/USD Rate",
		Mode:       modeLines,
		Decimals:   4,
		Color:      colorPrimary,
		YAxisTitle: "Exchange Rate",
	})
}

// Inflation builds the HICP chart: lines with markers at one decimal and
// the dashed 2% target line.
func Inflation(w *data.SeriesWindow) *Chart {
	if w == nil || len(w.Observations) == 0 {
		return Empty("No inflation data available")
	}
	return Line(w, LineOptions{
		Title:      "Inflation Rate (HICP)",
		TraceName:  "Inflation Rate",
		Mode:       modeLinesMarkers,
		Decimals:   1,
		Color:      colorPrimary,
		YAxisTitle: "Inflation Rate (%)",
		Target:     ecbTarget("ECB Target (2%)"),
	})
}

// InterestRate builds the policy-rate chart as a step line, titled from
// the stored series metadata.
func InterestRate(w *data.SeriesWindow) *Chart {
	if w == nil || len(w.Observations) == 0 {
		return Empty("No interest rate data available")
	}

	title := "ECB Interest Rate"
	if w.Series != nil && w.Series.Name != "" {
		title = w.Series.Name
	}

	return Line(w, LineOptions{
		Title:      title,
		TraceName:  "ECB Rate",
		Mode:       modeLines,
		Shape:      shapeStep,
		Decimals:   2,
		Color:      colorPrimary,
		YAxisTitle: "Interest Rate (%)",
	})
}
