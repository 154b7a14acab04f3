package stations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 19, table.Len())

	bos, ok := table.Get("KBOS")
	require.True(t, ok)
	assert.Equal(t, "General Edward Lawrence Logan International Airport", bos.Name)
	assert.Equal(t, "Boston", bos.City)
	assert.Equal(t, "MA", bos.State)
	assert.InDelta(t, 42.36298, bos.Lat, 1e-9)
	assert.InDelta(t, -71.00684, bos.Lon, 1e-9)

	for _, id := range []string{"KPWM", "KBTV", "KPVD", "KBDL", "KMHT", "KBHB"} {
		_, ok := table.Get(id)
		assert.True(t, ok, id)
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	table, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 19, table.Len())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stations:
  - id: KJFK
    name: John F. Kennedy International Airport
    city: New York
    state: NY
    lat: 40.63975
    lon: -73.77893
`), 0o600))

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"KJFK"}, table.IDs())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read stations file")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("stations: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse stations")

	_, err = Parse([]byte("stations: []"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
