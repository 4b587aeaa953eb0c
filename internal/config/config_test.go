package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENABLE_DB", "true")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("PORT", "")
	t.Setenv("RECOMMENDATION_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "health.csv", cfg.ContentFile)
	assert.Equal(t, "condition.csv", cfg.ConditionsFile)
	assert.Equal(t, "Exercise for a Healthy Heart", cfg.ReferenceItem)
	assert.Equal(t, 5, cfg.Limit)
	assert.EqualValues(t, 1<<20, cfg.MaxBodyBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CONTENT_FILE", "/data/content.csv")
	t.Setenv("RECOMMENDATION_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/data/content.csv", cfg.ContentFile)
	assert.Equal(t, 3, cfg.Limit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("RECOMMENDATION_LIMIT", "lots")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RECOMMENDATION_LIMIT", "0")
	_, err = Load()
	assert.Error(t, err)
}
