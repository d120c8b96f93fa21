// ABOUTME: SDMX-JSON document types and parsing for ECB data API responses
// ABOUTME: Extracts observations, periods, status codes, and series metadata

package ecb

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Observation status codes reported by the ECB in OBS_STATUS.
const (
	StatusNormal      = "A"
	StatusBreak       = "B"
	StatusEstimated   = "E"
	StatusForecast    = "F"
	StatusMissing     = "M"
	StatusProvisional = "P"
)

// Observation is a single period/value pair from an ECB series.
type Observation struct {
	Period string // as reported: "2024-01-15", "2024-01", or "2024"
	Value  float64
	Status string // OBS_STATUS code, StatusNormal when the response has none
}

// SeriesData is the parsed result of one series fetch.
type SeriesData struct {
	SeriesKey    string // flow-qualified key, e.g. "EXR.D.USD.EUR.SP00.A"
	Title        string // TITLE series attribute, empty when absent
	Unit         string // UNIT series attribute, empty when absent
	Observations []Observation
}

// document mirrors the SDMX-JSON payload shape the data API returns with
// format=jsondata. Only the fields the dashboard reads are declared.
type document struct {
	DataSets  []dataSet `json:"dataSets"`
	Structure structure `json:"structure"`
}

type dataSet struct {
	Series map[string]seriesEntry `json:"series"`
}

// seriesEntry maps observation indexes ("0", "1", ...) to arrays of the form
// [value, attr0, attr1, ...]. Values and attribute indexes may be null, so
// every element is a *float64.
type seriesEntry struct {
	Observations map[string][]*float64 `json:"observations"`
}

type structure struct {
	Name       string     `json:"name"`
	Dimensions dimensions `json:"dimensions"`
	Attributes attributes `json:"attributes"`
}

type dimensions struct {
	Observation []component `json:"observation"`
}

type attributes struct {
	Series      []component `json:"series"`
	Observation []component `json:"observation"`
}

// component is a dimension or attribute descriptor with its value list.
type component struct {
	ID     string          `json:"id"`
	Values []componentItem `json:"values"`
}

type componentItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// parseDocument decodes an SDMX-JSON payload into the observations and
// metadata for seriesKey. Observations with null values are dropped; the
// remainder come back in time order.
func parseDocument(raw []byte, seriesKey string) (*SeriesData, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding SDMX response for %s: %w", seriesKey, err)
	}

	if len(doc.DataSets) == 0 {
		return nil, fmt.Errorf("SDMX response for %s has no datasets", seriesKey)
	}

	periods := timePeriods(doc.Structure)
	if periods == nil {
		return nil, fmt.Errorf("SDMX response for %s has no TIME_PERIOD dimension", seriesKey)
	}

	data := &SeriesData{
		SeriesKey: seriesKey,
		Title:     seriesAttribute(doc.Structure, "TITLE"),
		Unit:      seriesAttribute(doc.Structure, "UNIT"),
	}

	entry, ok := firstSeries(doc.DataSets[0])
	if !ok {
		// A dataset with no series means the range holds no data.
		return data, nil
	}

	statusIdx, statusValues := observationStatus(doc.Structure)

	type indexed struct {
		index int
		obs   Observation
	}
	var rows []indexed
	for key, arr := range entry.Observations {
		index, err := strconv.Atoi(key)
		if err != nil || index < 0 || index >= len(periods) {
			continue
		}
		if len(arr) == 0 || arr[0] == nil {
			continue
		}
		rows = append(rows, indexed{
			index: index,
			obs: Observation{
				Period: periods[index],
				Value:  *arr[0],
				Status: statusCode(arr, statusIdx, statusValues),
			},
		})
	}

	// Index order follows the TIME_PERIOD dimension, so sorting by index
	// yields chronological observations regardless of JSON key order.
	sort.Slice(rows, func(i, j int) bool { return rows[i].index < rows[j].index })

	data.Observations = make([]Observation, len(rows))
	for i, r := range rows {
		data.Observations[i] = r.obs
	}
	return data, nil
}

// timePeriods returns the period strings of the TIME_PERIOD observation
// dimension, or nil when the structure lacks one.
func timePeriods(s structure) []string {
	for _, dim := range s.Dimensions.Observation {
		if dim.ID != "TIME_PERIOD" {
			continue
		}
		periods := make([]string, len(dim.Values))
		for i, v := range dim.Values {
			periods[i] = v.ID
		}
		return periods
	}
	return nil
}

// seriesAttribute returns the name of the first value of the given series
// attribute, or empty when absent.
func seriesAttribute(s structure, id string) string {
	for _, attr := range s.Attributes.Series {
		if attr.ID == id && len(attr.Values) > 0 {
			return attr.Values[0].Name
		}
	}
	return ""
}

// observationStatus locates the OBS_STATUS attribute. The returned index is
// the attribute's position among the observation attributes, which is also
// its slot in each observation array after the leading value.
func observationStatus(s structure) (int, []componentItem) {
	for i, attr := range s.Attributes.Observation {
		if attr.ID == "OBS_STATUS" {
			return i, attr.Values
		}
	}
	return -1, nil
}

// statusCode resolves an observation's OBS_STATUS code, defaulting to
// StatusNormal when the response does not report one.
func statusCode(arr []*float64, statusIdx int, values []componentItem) string {
	if statusIdx < 0 {
		return StatusNormal
	}
	slot := 1 + statusIdx
	if slot >= len(arr) || arr[slot] == nil {
		return StatusNormal
	}
	v := int(*arr[slot])
	if v < 0 || v >= len(values) {
		return StatusNormal
	}
	return values[v].ID
}

// firstSeries returns the dataset's series entry. Full series keys select a
// single series; if a wildcard query ever returns several, the
// lexicographically first key keeps the choice deterministic.
func firstSeries(ds dataSet) (seriesEntry, bool) {
	if len(ds.Series) == 0 {
		return seriesEntry{}, false
	}
	keys := make([]string, 0, len(ds.Series))
	for k := range ds.Series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return ds.Series[keys[0]], true
}
