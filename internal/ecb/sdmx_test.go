// ABOUTME: Tests for SDMX-JSON parsing
// ABOUTME: Covers observation extraction, status codes, metadata, and malformed documents

package ecb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sdmxFixture is a trimmed EXR response in the shape the data API returns
// with format=jsondata: observation arrays are [value, statusIndex], the
// TIME_PERIOD dimension carries the period strings, and series attributes
// carry TITLE and UNIT.
const sdmxFixture = `{
  "dataSets": [
    {
      "series": {
        "0:0:0:0:0": {
          "observations": {
            "0": [1.0875, 0],
            "1": [1.0912, 1],
            "2": [null, 0],
            "3": [1.0954]
          }
        }
      }
    }
  ],
  "structure": {
    "name": "Exchange Rates",
    "dimensions": {
      "observation": [
        {
          "id": "TIME_PERIOD",
          "name": "Time period or range",
          "values": [
            {"id": "2024-01-02", "name": "2024-01-02"},
            {"id": "2024-01-03", "name": "2024-01-03"},
            {"id": "2024-01-04", "name": "2024-01-04"},
            {"id": "2024-01-05", "name": "2024-01-05"}
          ]
        }
      ]
    },
    "attributes": {
      "series": [
        {"id": "TITLE", "name": "Title", "values": [{"id": null, "name": "US dollar/Euro"}]},
        {"id": "UNIT", "name": "Unit", "values": [{"id": "USD", "name": "US dollar"}]}
      ],
      "observation": [
        {
          "id": "OBS_STATUS",
          "name": "Observation status",
          "values": [
            {"id": "A", "name": "Normal value"},
            {"id": "E", "name": "Estimated value"}
          ]
        }
      ]
    }
  }
}`

func TestParseDocument(t *testing.T) {
	data, err := parseDocument([]byte(sdmxFixture), "EXR.D.USD.EUR.SP00.A")
	require.NoError(t, err)

	assert.Equal(t, "EXR.D.USD.EUR.SP00.A", data.SeriesKey)
	assert.Equal(t, "US dollar/Euro", data.Title)
	assert.Equal(t, "US dollar", data.Unit)

	// The null value at index 2 is dropped; the rest arrive in time order.
	require.Len(t, data.Observations, 3)
	assert.Equal(t, Observation{Period: "2024-01-02", Value: 1.0875, Status: StatusNormal}, data.Observations[0])
	assert.Equal(t, Observation{Period: "2024-01-03", Value: 1.0912, Status: StatusEstimated}, data.Observations[1])
	assert.Equal(t, Observation{Period: "2024-01-05", Value: 1.0954, Status: StatusNormal}, data.Observations[2])
}

func TestParseDocument_NoStatusAttribute(t *testing.T) {
	doc := `{
	  "dataSets": [{"series": {"0:0": {"observations": {"0": [2.5]}}}}],
	  "structure": {
	    "dimensions": {"observation": [
	      {"id": "TIME_PERIOD", "values": [{"id": "2024-03", "name": "2024-03"}]}
	    ]},
	    "attributes": {"series": [], "observation": []}
	  }
	}`

	data, err := parseDocument([]byte(doc), "ICP.M.U2.N.000000.4.ANR")
	require.NoError(t, err)

	require.Len(t, data.Observations, 1)
	assert.Equal(t, StatusNormal, data.Observations[0].Status)
	assert.Empty(t, data.Title)
	assert.Empty(t, data.Unit)
}

func TestParseDocument_EmptySeries(t *testing.T) {
	doc := `{
	  "dataSets": [{"series": {}}],
	  "structure": {
	    "dimensions": {"observation": [
	      {"id": "TIME_PERIOD", "values": []}
	    ]},
	    "attributes": {
	      "series": [{"id": "TITLE", "values": [{"name": "Deposit facility rate"}]}],
	      "observation": []
	    }
	  }
	}`

	data, err := parseDocument([]byte(doc), "FM.D.U2.EUR.4F.KR.DFR.LEV")
	require.NoError(t, err)

	assert.Empty(t, data.Observations)
	assert.Equal(t, "Deposit facility rate", data.Title)
}

func TestParseDocument_SkipsUnmappableObservations(t *testing.T) {
	doc := `{
	  "dataSets": [{"series": {"0:0": {"observations": {
	    "0": [1.5],
	    "99": [9.9],
	    "x": [8.8]
	  }}}}],
	  "structure": {
	    "dimensions": {"observation": [
	      {"id": "TIME_PERIOD", "values": [{"id": "2024", "name": "2024"}]}
	    ]},
	    "attributes": {"series": [], "observation": []}
	  }
	}`

	data, err := parseDocument([]byte(doc), "EXR.A.USD.EUR.SP00.A")
	require.NoError(t, err)

	// Index 99 is past the period list and "x" is not an index at all.
	require.Len(t, data.Observations, 1)
	assert.Equal(t, "2024", data.Observations[0].Period)
	assert.Equal(t, 1.5, data.Observations[0].Value)
}

func TestParseDocument_NoDataSets(t *testing.T) {
	doc := `{"dataSets": [], "structure": {"dimensions": {"observation": []}}}`

	_, err := parseDocument([]byte(doc), "EXR.D.USD.EUR.SP00.A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no datasets")
}

func TestParseDocument_NoTimePeriod(t *testing.T) {
	doc := `{
	  "dataSets": [{"series": {}}],
	  "structure": {"dimensions": {"observation": [
	    {"id": "CURRENCY", "values": [{"id": "USD"}]}
	  ]}}
	}`

	_, err := parseDocument([]byte(doc), "EXR.D.USD.EUR.SP00.A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIME_PERIOD")
}

func TestParseDocument_NotJSON(t *testing.T) {
	_, err := parseDocument([]byte("<GenericData/>"), "EXR.D.USD.EUR.SP00.A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding SDMX response")
}

func TestParseDocument_MultipleSeriesDeterministic(t *testing.T) {
	doc := `{
	  "dataSets": [{"series": {
	    "0:1": {"observations": {"0": [2.0]}},
	    "0:0": {"observations": {"0": [1.0]}}
	  }}],
	  "structure": {
	    "dimensions": {"observation": [
	      {"id": "TIME_PERIOD", "values": [{"id": "2024-01", "name": "2024-01"}]}
	    ]},
	    "attributes": {"series": [], "observation": []}
	  }
	}`

	for i := 0; i < 10; i++ {
		data, err := parseDocument([]byte(doc), "EXR.M.USD.EUR.SP00.A")
		require.NoError(t, err)
		require.Len(t, data.Observations, 1)
		assert.Equal(t, 1.0, data.Observations[0].Value)
	}
}
