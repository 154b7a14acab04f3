package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStationTable(t *testing.T) {
	table, err := NewStationTable([]Station{
		{ID: "kpwm", Name: "Portland International Jetport", Lat: 43.64617, Lon: -70.30875},
		testStation,
		{ID: "KBDL", Lat: 41.93887, Lon: -72.68323},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"KBDL", "KBOS", "KPWM"}, table.IDs())

	s, ok := table.Get("kbos")
	require.True(t, ok)
	assert.Equal(t, testStation, s)

	pwm, ok := table.Get("KPWM")
	require.True(t, ok)
	assert.Equal(t, "KPWM", pwm.ID)

	bdl, _ := table.Get("KBDL")
	assert.Equal(t, "KBDL", bdl.Name, "name defaults to the identifier")

	_, ok = table.Get("KJFK")
	assert.False(t, ok)
}

func TestStationTable_IDsIsACopy(t *testing.T) {
	table, err := NewStationTable([]Station{testStation})
	require.NoError(t, err)

	ids := table.IDs()
	ids[0] = "XXXX"

	assert.Equal(t, []string{"KBOS"}, table.IDs())
}

func TestNewStationTable_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		stations []Station
		errText  string
	}{
		{"empty", nil, "empty"},
		{"missing id", []Station{{Name: "nowhere"}}, "id is required"},
		{"duplicate", []Station{testStation, {ID: "kbos"}}, "duplicate"},
		{"bad latitude", []Station{{ID: "KXXX", Lat: 91}}, "out of range"},
		{"bad longitude", []Station{{ID: "KXXX", Lon: -181}}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStationTable(tt.stations)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}
