package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPPLIERPAY_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Reconciliation.RequirePeriod)
	assert.Equal(t, 20, cfg.Reconciliation.HeaderScanRows)
	assert.Equal(t, "auto", cfg.Reconciliation.InputEncoding)

	assert.True(t, cfg.Reconciliation.ThresholdAmount().Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "0.01", cfg.Reconciliation.ToleranceAmount().String())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPPLIERPAY_CONFIG", "")
	t.Setenv("SUPPLIERPAY_RECONCILIATION_THRESHOLD", "750.50")
	t.Setenv("SUPPLIERPAY_RECONCILIATION_ORGANIZATION", "Kibanda Foods")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "750.5", cfg.Reconciliation.ThresholdAmount().String())
	assert.Equal(t, "Kibanda Foods", cfg.Reconciliation.Organization)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[reconciliation]\nthreshold = \"1000\"\nrequire_period = false\n\n[log]\nlevel = \"debug\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SUPPLIERPAY_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1000", cfg.Reconciliation.Threshold)
	assert.Equal(t, "1000", cfg.Reconciliation.ThresholdAmount().String())
	assert.False(t, cfg.Reconciliation.RequirePeriod)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPPLIERPAY_CONFIG", "")
	t.Setenv("SUPPLIERPAY_RECONCILIATION_THRESHOLD", "four hundred")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconciliation.threshold")
}

func TestLoadRejectsNegativeTolerance(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPPLIERPAY_CONFIG", "")
	t.Setenv("SUPPLIERPAY_RECONCILIATION_TOLERANCE", "-0.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconciliation.tolerance")
}
