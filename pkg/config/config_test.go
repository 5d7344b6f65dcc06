package config

import (
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/job.yaml", []byte(`
source:
  path: '\\.\C:'
  kind: volume
workers: 3
output:
  path: out.jsonl.gz
  compress: true
`), 0644))

	s, err := Load(fs, "/job.yaml")
	require.NoError(t, err)
	assert.Equal(t, KindVolume, s.Source.Kind)
	assert.Equal(t, `\\.\C:`, s.Source.Path)
	assert.Equal(t, 0, s.Source.RecordSize)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, "info", s.LogLevel)
	assert.True(t, s.Output.Compress)
	assert.False(t, s.Output.Timeline)
}

func TestLoadDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/job.yaml", []byte("source:\n  path: /case/$MFT\n"), 0644))
	s, err := Load(fs, "/job.yaml")
	require.NoError(t, err)
	assert.Equal(t, KindFlat, s.Source.Kind)
	assert.Equal(t, runtime.NumCPU(), s.Workers)
	assert.Equal(t, 1000, s.PathCache)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "/missing.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("source: [1, 2"), 0644))
	_, err = Load(fs, "/bad.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := Default()
	assert.NoError(t, s.Validate())

	s.Source.Kind = "tape"
	assert.Error(t, s.Validate())

	s = Default()
	s.Source.RecordSize = 1000
	assert.Error(t, s.Validate())
	s.Source.RecordSize = 1536
	assert.Error(t, s.Validate())
	s.Source.RecordSize = 128 << 10
	assert.Error(t, s.Validate())
	s.Source.RecordSize = -512
	assert.Error(t, s.Validate())
	s.Source.RecordSize = 4096
	assert.NoError(t, s.Validate())

	s.PathCache = 0
	assert.Error(t, s.Validate())
	s.PathCache = 10

	s.Workers = -1
	assert.Error(t, s.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := Default()
	s.Source.Path = "/img.dd"
	s.Source.Kind = KindVolume
	s.Output.Timeline = true
	require.NoError(t, s.Save(fs, "/out.yaml"))

	back, err := Load(fs, "/out.yaml")
	require.NoError(t, err)
	assert.Equal(t, s, back)
}
