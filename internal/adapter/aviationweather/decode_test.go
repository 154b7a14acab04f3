package aviationweather

import (
	"testing"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObservations_NewestReportWins(t *testing.T) {
	body := []byte(`[
	  {"icaoId": "KBOS", "obsTime": 1748775660, "visib": 1, "rawOb": "older"},
	  {"icaoId": "KBOS", "obsTime": 1748779260, "visib": 6, "rawOb": "newer"},
	  {"icaoId": "KBOS", "obsTime": 1748772060, "visib": 0.5, "rawOb": "oldest"}
	]`)

	results, err := DecodeObservations(body, []string{"KBOS"})
	require.NoError(t, err)
	require.NotNil(t, results["KBOS"].Observation)
	assert.Equal(t, "newer", results["KBOS"].Observation.RawReport)
}

func TestDecodeObservations_MalformedEntry(t *testing.T) {
	body := []byte(`[
	  {"icaoId": "KBOS", "obsTime": 1748779260, "visib": "lots"},
	  {"icaoId": "KPVD", "obsTime": 1748779260, "temp": {"c": 14}},
	  {"icaoId": "KBDL", "obsTime": 1748779260, "visib": 10}
	]`)

	results, err := DecodeObservations(body, []string{"KBOS", "KPVD", "KBDL"})
	require.NoError(t, err)
	assert.ErrorIs(t, results["KBOS"].Err, domain.ErrMalformedObservation)
	assert.ErrorIs(t, results["KPVD"].Err, domain.ErrMalformedObservation)
	require.NotNil(t, results["KBDL"].Observation)
}

func TestDecodeObservations_MalformedDoesNotReplaceGoodReport(t *testing.T) {
	body := []byte(`[
	  {"icaoId": "KBOS", "obsTime": 1748779260, "visib": 10},
	  {"icaoId": "KBOS", "obsTime": 1748779300, "visib": "??"}
	]`)

	results, err := DecodeObservations(body, []string{"KBOS"})
	require.NoError(t, err)
	require.NotNil(t, results["KBOS"].Observation)
	assert.NoError(t, results["KBOS"].Err)
}

func TestDecodeObservations_IgnoresUnrequestedStations(t *testing.T) {
	body := []byte(`[{"icaoId": "KJFK", "obsTime": 1748779260, "visib": 10}]`)

	results, err := DecodeObservations(body, []string{"kbos"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.ErrorIs(t, results["KBOS"].Err, domain.ErrNoObservation)
}

func TestDecodeObservations_ReportTimeFallback(t *testing.T) {
	body := []byte(`[{"icaoId": "KBOS", "reportTime": "2025-06-01 12:00:00"}]`)

	results, err := DecodeObservations(body, []string{"KBOS"})
	require.NoError(t, err)
	require.NotNil(t, results["KBOS"].Observation)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), results["KBOS"].Observation.ObservedAt)
}

func TestCeiling(t *testing.T) {
	tests := []struct {
		name   string
		layers []cloudBase
		want   *int
	}{
		{"no layers", nil, nil},
		{"few and scattered only", []cloudBase{{Cover: "FEW", Base: num(2000)}, {Cover: "SCT", Base: num(300)}}, nil},
		{"lowest broken", []cloudBase{{Cover: "OVC", Base: num(4000)}, {Cover: "BKN", Base: num(2500)}}, intPtr(2500)},
		{"lowercase cover", []cloudBase{{Cover: "ovc", Base: num(700)}}, intPtr(700)},
		{"missing base ignored", []cloudBase{{Cover: "BKN"}, {Cover: "OVC", Base: num(1200)}}, intPtr(1200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ceiling(tt.layers))
		})
	}
}

func TestFlexNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    *float64
		wantErr bool
	}{
		{`7`, floatPtr(7), false},
		{`0.25`, floatPtr(0.25), false},
		{`"10+"`, floatPtr(10), false},
		{`"6+"`, floatPtr(6), false},
		{`"3"`, floatPtr(3), false},
		{`"VRB"`, nil, false},
		{`null`, nil, false},
		{`""`, nil, false},
		{`"P6SM"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n flexNumber
			err := n.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.value)
		})
	}
}

func num(v float64) flexNumber { return flexNumber{value: &v} }
func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }
