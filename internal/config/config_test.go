package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("FY25 Audit", "Acme Manufacturing")

	assert.NotEmpty(t, cfg.Engagement.ID)
	assert.Equal(t, "FY25 Audit", cfg.Engagement.Name)
	assert.Equal(t, "Acme Manufacturing", cfg.Engagement.Client)
	assert.Equal(t, 0.01, cfg.Import.Epsilon)
	assert.Equal(t, "generic", cfg.Import.SourceSystem)
	assert.True(t, cfg.Git.AutoCommit)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := Default("FY25 Audit", "Acme")
	cfg.Materiality.Threshold = 250000
	cfg.Risk = map[string]string{"revenue": "high", "cash": "low"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Engagement, loaded.Engagement)
	assert.Equal(t, "high", loaded.Risk["revenue"])
	assert.Equal(t, "250000", loaded.Materiality.ThresholdDecimal().String())
	assert.Equal(t, "0.01", loaded.Import.EpsilonDecimal().String())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("engagement: [not: valid"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
