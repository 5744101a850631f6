package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/abstractor/internal/aggregate"
	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/sectionize"
)

func TestAccessorDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL",
		"SECTION_LOOKAHEAD_LINES", "SECTION_DUPLICATES", "BATCH_WORKERS", "REAGGREGATE_INTERVAL", "MIGRATIONS_PATH"} {
		t.Setenv(k, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, 100.0, RateLimitRPS())
	assert.Equal(t, 20, RateLimitBurst())
	assert.Equal(t, "info", LogLevel())
	assert.Equal(t, 12, LookaheadLines())
	assert.Equal(t, "concatenate", DuplicateSections())
	assert.Equal(t, 4, BatchWorkers())
	assert.Equal(t, time.Minute, ReaggregateInterval())
	assert.Equal(t, "migrations", MigrationsPath())
	assert.Equal(t, sectionize.DefaultOptions(), SectionOptions())
}

func TestAccessorOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BATCH_WORKERS", "16")
	t.Setenv("REAGGREGATE_INTERVAL", "30s")
	t.Setenv("SECTION_LOOKAHEAD_LINES", "-3")

	assert.Equal(t, ":9090", ServerAddr())
	assert.Equal(t, 16, BatchWorkers())
	assert.Equal(t, 30*time.Second, ReaggregateInterval())
	assert.Equal(t, 12, LookaheadLines(), "non-positive values fall back")

	t.Setenv("SECTION_DUPLICATES", "last-wins")
	assert.Equal(t, sectionize.LastWins, SectionOptions().Duplicates)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ABSTRACTOR_TEST_KEY=from-file\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("ABSTRACTOR_TEST_SECRET=s3cret\n"), 0o600))

	t.Setenv("ABSTRACTOR_ENV", envFile)
	t.Setenv("ABSTRACTOR_TEST_KEY", "")
	t.Setenv("ABSTRACTOR_TEST_SECRET", "")
	os.Unsetenv("ABSTRACTOR_TEST_KEY")
	os.Unsetenv("ABSTRACTOR_TEST_SECRET")

	require.NoError(t, Load())
	assert.Equal(t, "from-file", os.Getenv("ABSTRACTOR_TEST_KEY"))
	assert.Equal(t, "s3cret", os.Getenv("ABSTRACTOR_TEST_SECRET"))
}

func TestParsePrecedence_Overrides(t *testing.T) {
	doc := []byte(`
status: [performed, history, measured, present, unknown, planned, denied, negated]
section:
  - PROCEDURE
  - HPI
exclusions:
  - when: Recon_Performed
    drop: Recon_Planned
`)
	cfg, err := ParsePrecedence(doc)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusHistory, cfg.Precedence.Status[1])
	assert.Equal(t, []string{"PROCEDURE", "HPI"}, cfg.Precedence.Section)
	assert.Equal(t, domain.AllNoteTypes(), cfg.Precedence.NoteType, "omitted keys keep defaults")
	assert.Equal(t, domain.DefaultTrackedFields(), cfg.TrackedFields)
}

func TestParsePrecedence_Invalid(t *testing.T) {
	_, err := ParsePrecedence([]byte("status: [performed, sometimes]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "sometimes"`)

	_, err = ParsePrecedence([]byte("status: [performed\n"))
	assert.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	cfg, err := LoadPrecedence("")
	require.NoError(t, err)
	assert.Equal(t, aggregate.DefaultConfig(), cfg)

	cfg, err = LoadPrecedence(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, aggregate.DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "precedence.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracked_fields: [BMI, Age_DOS]\nperformed_only: []\n"), 0o600))
	cfg, err = LoadPrecedence(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BMI", "Age_DOS"}, cfg.TrackedFields)
	assert.Empty(t, cfg.PerformedOnly)
}
