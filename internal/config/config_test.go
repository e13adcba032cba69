package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := `
thresholds:
  direct_classification: 20
  secondary_check: 10
  score_difference: 5
categories:
  03-仙侠:
    high_weight: [仙侠, 修真]
    medium_weight: [飞剑]
    low_weight: [灵石]
processing:
  workers: 2
  text_extraction:
    begin_chars: 100
    random_fragment_count: 2
    random_fragment_size: 50
    seed: 7
scoring:
  duplicate_mode: capped
  include_filename: false
`
	cfg, err := LoadConfig(writeConfig(t, "config.yaml", content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 20, cfg.Thresholds.DirectClassification)
	assert.Equal(t, 10, cfg.Thresholds.SecondaryCheck)
	assert.Equal(t, 5, cfg.Thresholds.ScoreDifference)
	require.Contains(t, cfg.Categories, "03-仙侠")
	assert.Equal(t, []string{"仙侠", "修真"}, cfg.Categories["03-仙侠"].HighWeight)
	assert.Equal(t, 2, cfg.Processing.Workers)
	assert.Equal(t, uint64(7), cfg.Processing.TextExtraction.Seed)
	assert.Equal(t, DuplicateCapped, cfg.Scoring.DuplicateMode)
	assert.False(t, cfg.Scoring.FilenameScored())
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"thresholds": {"direct_classification": 12, "secondary_check": 6, "score_difference": 3},
		"weights": {"high": 5, "medium": 3, "low": 1},
		"encoding": {"min_confidence": 0.5, "detection_encodings": ["gbk", "utf-16"]}
	}`

	cfg, err := LoadConfig(writeConfig(t, "config.json", content))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Thresholds.DirectClassification)
	assert.Equal(t, 5, cfg.Weights.High)
	assert.InDelta(t, 0.5, cfg.Encoding.MinConfidence, 1e-9)
	assert.Equal(t, []string{"gbk", "utf-16"}, cfg.Encoding.DetectionEncodings)
	assert.Empty(t, cfg.Categories)
}

func TestLoadConfig_ValidTOML(t *testing.T) {
	content := `
[thresholds]
direct_classification = 18
secondary_check = 9
score_difference = 4

[categories."10-科幻"]
high_weight = ["科幻", "星际"]
medium_weight = ["太空"]
low_weight = []
multiplier = 1.5

[paths]
library_dir = "/srv/novels"
`
	cfg, err := LoadConfig(writeConfig(t, "config.toml", content))
	require.NoError(t, err)

	assert.Equal(t, 18, cfg.Thresholds.DirectClassification)
	require.Contains(t, cfg.Categories, "10-科幻")
	assert.InDelta(t, 1.5, cfg.Categories["10-科幻"].Multiplier, 1e-9)
	assert.Equal(t, "/srv/novels", cfg.Paths.LibraryDir)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "config.json", `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_SchemaRejectsUnknownSection(t *testing.T) {
	content := `
thresholds:
  direct_classification: 16
  bogus: 1
`
	cfg, err := LoadConfig(writeConfig(t, "config.yaml", content))
	require.Error(t, err)
	assert.Nil(t, cfg)

	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "config error")
}

func TestLoadConfig_SchemaRejectsWrongType(t *testing.T) {
	content := `{"weights": {"high": "three"}}`

	_, err := LoadConfig(writeConfig(t, "config.json", content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights.high")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_DefaultConfig(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := Default()
	cfg.Weights.High = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Weights.High")
}

func TestValidate_SecondaryAboveDirect(t *testing.T) {
	cfg := Default()
	cfg.Thresholds.SecondaryCheck = cfg.Thresholds.DirectClassification + 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Thresholds.SecondaryCheck")
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Categories = map[string]Category{
		"../escape": {HighWeight: []string{"x"}},
		"empty":     {},
		"00-review": {LowWeight: []string{"y"}},
	}
	cfg.Encoding.DetectionEncodings = []string{"gbk", "no-such-charset"}
	cfg.Encoding.ExpectedScript = "Klingon"
	cfg.Scoring.DuplicateMode = "sometimes"

	err := cfg.Validate()
	require.Error(t, err)

	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	msg := err.Error()
	assert.Contains(t, msg, "path separator")
	assert.Contains(t, msg, `category "empty" has no keywords`)
	assert.Contains(t, msg, "collides")
	assert.Contains(t, msg, "no-such-charset")
	assert.Contains(t, msg, "Klingon")
	assert.Contains(t, msg, "Scoring.DuplicateMode")
	assert.GreaterOrEqual(t, len(invalid.Problems), 6)
}

func TestValidate_BlankKeyword(t *testing.T) {
	cfg := Default()
	cfg.Categories = map[string]Category{"05-都市": {HighWeight: []string{"都市", "  "}}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blank keyword")
}

func TestValidate_ZeroThresholds(t *testing.T) {
	cfg := Default()
	cfg.Thresholds = Thresholds{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not all be zero")
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Thresholds: Thresholds{DirectClassification: 30},
		Processing: Processing{Workers: 1},
	}

	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, 30, merged.Thresholds.DirectClassification)
	assert.Equal(t, DefaultSecondaryThreshold, merged.Thresholds.SecondaryCheck)
	assert.Equal(t, DefaultScoreDifference, merged.Thresholds.ScoreDifference)
	assert.Equal(t, 1, merged.Processing.Workers)
	assert.Equal(t, DefaultBatchSize, merged.Processing.BatchSize)
	assert.Equal(t, DefaultPendingDir, merged.Processing.PendingDir)
	assert.Equal(t, DefaultSeed, merged.Processing.TextExtraction.Seed)
	assert.Len(t, merged.Categories, 4)
	assert.Equal(t, DuplicateAdditive, merged.Scoring.DuplicateMode)
	assert.True(t, merged.Scoring.FilenameScored())

	// the receiver is untouched
	assert.Equal(t, 0, cfg.Thresholds.SecondaryCheck)
}

func TestMergeWithDefaults_ExplicitZeroKept(t *testing.T) {
	content := `
thresholds:
  direct_classification: 12
  score_difference: 0
weights:
  low: 0
processing:
  text_extraction:
    seed: 0
`
	cfg, err := LoadConfig(writeConfig(t, "config.yaml", content))
	require.NoError(t, err)
	assert.True(t, cfg.IsSet("thresholds.score_difference"))
	assert.False(t, cfg.IsSet("thresholds.secondary_check"))

	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, 12, merged.Thresholds.DirectClassification)
	assert.Equal(t, 0, merged.Thresholds.ScoreDifference)
	assert.Equal(t, DefaultSecondaryThreshold, merged.Thresholds.SecondaryCheck)
	assert.Equal(t, 0, merged.Weights.Low)
	assert.Equal(t, DefaultHighWeight, merged.Weights.High)
	assert.Equal(t, uint64(0), merged.Processing.TextExtraction.Seed)
	assert.NoError(t, merged.Validate())
}

func TestMergeWithDefaults_CategoriesReplaceDefaults(t *testing.T) {
	cfg := &Config{
		Categories: map[string]Category{"99-杂项": {LowWeight: []string{"杂"}}},
	}

	merged := cfg.MergeWithDefaults(Default())

	require.Len(t, merged.Categories, 1)
	assert.Equal(t, 1.0, merged.Categories["99-杂项"].Multiplier)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{Weights: Weights{High: 9}}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 9, merged.Weights.High)
	assert.Equal(t, 0, merged.Weights.Medium)
	assert.Empty(t, merged.Categories)
}

func TestPaths_ResolveAgainstLibrary(t *testing.T) {
	cfg := Default()
	cfg.Paths.LibraryDir = "/lib"
	cfg.Paths.LogsDir = "/var/log/sorter"

	assert.Equal(t, filepath.Join("/lib", "backup", "encoding_fix"), cfg.BackupPath())
	assert.Equal(t, "/var/log/sorter", cfg.LogsPath())
	assert.Equal(t, filepath.Join("/lib", DefaultPendingDir), cfg.PendingPath())
	assert.Equal(t, filepath.Join("/lib", DefaultHoldingDir), cfg.HoldingPath())
	assert.Equal(t, filepath.Join("/lib", "01-玄幻"), cfg.CategoryPath("01-玄幻"))
}
