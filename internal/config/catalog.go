// ABOUTME: Built-in catalog of the ECB data series the dashboard tracks
// ABOUTME: Maps catalog names to SDMX dataflow resources and series keys

package config

// Dashboard categories. Every catalog entry belongs to exactly one, and the
// refresh API addresses series by category.
const (
	CategoryExchangeRate = "exchange_rate"
	CategoryInflation    = "inflation"
	CategoryInterestRate = "interest_rate"
)

// SeriesSpec identifies one ECB series in the SDMX REST API.
type SeriesSpec struct {
	Name      string // catalog name, e.g. "EUR_USD_DAILY"
	Resource  string // SDMX dataflow, e.g. "EXR"
	Key       string // series key within the flow, e.g. "D.USD.EUR.SP00.A"
	Title     string // fallback title when the API response carries none
	Frequency string // DAILY or MONTHLY
	Unit      string // fallback unit when the API response carries none
	Category  string // dashboard category this series feeds
	Dashboard bool   // refreshed by refresh-all and shown on the overview
}

// FullKey returns the flow-qualified series key, e.g. "EXR.D.USD.EUR.SP00.A".
// Stored series are keyed by this value.
func (s SeriesSpec) FullKey() string {
	return s.Resource + "." + s.Key
}

var seriesCatalog = []SeriesSpec{
	{
		Name:      "EUR_USD_DAILY",
		Resource:  "EXR",
		Key:       "D.USD.EUR.SP00.A", // Daily.USD.EUR.Spot.Average
		Title:     "US dollar/Euro exchange rate",
		Frequency: "DAILY",
		Unit:      "US dollar",
		Category:  CategoryExchangeRate,
		Dashboard: true,
	},
	{
		Name:      "EUR_USD_MONTHLY",
		Resource:  "EXR",
		Key:       "M.USD.EUR.SP00.A", // Monthly.USD.EUR.Spot.Average
		Title:     "US dollar/Euro exchange rate (monthly average)",
		Frequency: "MONTHLY",
		Unit:      "US dollar",
		Category:  CategoryExchangeRate,
	},
	{
		Name:      "INFLATION_MONTHLY",
		Resource:  "ICP",
		Key:       "M.U2.N.000000.4.ANR", // Monthly.Euro area.Overall HICP.Annual rate
		Title:     "HICP - Overall index, annual rate of change",
		Frequency: "MONTHLY",
		Unit:      "Annual rate of change",
		Category:  CategoryInflation,
		Dashboard: true,
	},
	{
		Name:      "ECB_MAIN_RATE",
		Resource:  "FM",
		Key:       "D.U2.EUR.4F.KR.DFR.LEV", // Daily ECB deposit facility rate
		Title:     "ECB Deposit facility rate",
		Frequency: "DAILY",
		Unit:      "Percent per annum",
		Category:  CategoryInterestRate,
		Dashboard: true,
	},
	{
		Name:      "EUR_GBP_DAILY",
		Resource:  "EXR",
		Key:       "D.GBP.EUR.SP00.A", // Daily.GBP.EUR.Spot.Average
		Title:     "Pound sterling/Euro exchange rate",
		Frequency: "DAILY",
		Unit:      "Pound sterling",
		Category:  CategoryExchangeRate,
	},
}

// Series returns the full catalog in a stable order.
func Series() []SeriesSpec {
	out := make([]SeriesSpec, len(seriesCatalog))
	copy(out, seriesCatalog)
	return out
}

// DashboardSeries returns the series refreshed by refresh-all, in catalog order.
func DashboardSeries() []SeriesSpec {
	var out []SeriesSpec
	for _, s := range seriesCatalog {
		if s.Dashboard {
			out = append(out, s)
		}
	}
	return out
}

// SeriesByCategory returns the catalog entries in the given category.
// An unknown category yields an empty slice.
func SeriesByCategory(category string) []SeriesSpec {
	var out []SeriesSpec
	for _, s := range seriesCatalog {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// FindSeries looks up a catalog entry by name.
func FindSeries(name string) (SeriesSpec, bool) {
	for _, s := range seriesCatalog {
		if s.Name == name {
			return s, true
		}
	}
	return SeriesSpec{}, false
}
