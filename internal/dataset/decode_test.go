package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
  {"name": "Acme", "logoUrl": "https://cdn.example.com/acme.png",
   "headquarters": [{"city": "Amsterdam", "country": "Netherlands", "lat": 52.370216, "lon": 4.895168}]},
  {"name": "Globex", "headquarters": [{"city": "Springfield"}]}
]`

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNames []string
		wantErr   bool
	}{
		{name: "array form", input: sample, wantNames: []string{"Acme", "Globex"}},
		{name: "object form", input: `{"companies": [{"name": "Initech"}]}`, wantNames: []string{"Initech"}},
		{name: "empty array", input: `[]`, wantNames: []string{}},
		{name: "blank document", input: "  \n", wantErr: true},
		{name: "malformed", input: `[{"name": }]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestDecode_Headquarters(t *testing.T) {
	got, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	hq, ok := got[0].PrimaryHeadquarters()
	require.True(t, ok)
	assert.Equal(t, "Amsterdam", hq.City)
	require.NotNil(t, hq.Lat)
	assert.Equal(t, 52.370216, *hq.Lat)

	hq, ok = got[1].PrimaryHeadquarters()
	require.True(t, ok)
	assert.Nil(t, hq.Lat)
	assert.False(t, hq.Coordinates().Valid())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
