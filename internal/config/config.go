// Package config provides configuration loading and validation for the CLI
// and the classification pipeline.
package config

import (
	"unicode"

	"github.com/jonathan/novel-sorter/internal/charset"
)

// Defaults mirrored by Default().
const (
	DefaultDirectThreshold    = 16
	DefaultSecondaryThreshold = 8
	DefaultScoreDifference    = 4

	DefaultHighWeight   = 3
	DefaultMediumWeight = 2
	DefaultLowWeight    = 1

	DefaultMinConfidence = 0.7
	DefaultBatchSize     = 50
	DefaultWorkers       = 4

	DefaultBeginChars         = 3000
	DefaultFragmentCount      = 3
	DefaultFragmentSize       = 500
	DefaultSeed        uint64 = 42

	DefaultPendingDir = "00-pending"
	DefaultHoldingDir = "00-review"
	DefaultBackupDir  = "backup/encoding_fix"
	DefaultLogsDir    = "logs"
)

// Scoring modes for repeated keyword occurrences
const (
	DuplicateAdditive = "additive"
	DuplicateCapped   = "capped"
)

// Config is the full configuration of a batch run. It is loaded once and
// treated as read-only afterwards.
type Config struct {
	Thresholds Thresholds          `json:"thresholds" yaml:"thresholds" toml:"thresholds"`
	Weights    Weights             `json:"weights" yaml:"weights" toml:"weights"`
	Categories map[string]Category `json:"categories" yaml:"categories" toml:"categories" validate:"dive"`
	Encoding   Encoding            `json:"encoding" yaml:"encoding" toml:"encoding"`
	Processing Processing          `json:"processing" yaml:"processing" toml:"processing"`
	Scoring    Scoring             `json:"scoring" yaml:"scoring" toml:"scoring"`
	Paths      Paths               `json:"paths" yaml:"paths" toml:"paths"`

	// explicit holds the dotted keys a parsed document assigned, so that an
	// explicit zero survives MergeWithDefaults.
	explicit map[string]bool
}

// IsSet reports whether a parsed document assigned key, e.g.
// "thresholds.score_difference".
func (c *Config) IsSet(key string) bool {
	return c.explicit[key]
}

// Thresholds drive the three-way classification decision
type Thresholds struct {
	DirectClassification int `json:"direct_classification" yaml:"direct_classification" toml:"direct_classification" validate:"gte=0"`
	SecondaryCheck       int `json:"secondary_check" yaml:"secondary_check" toml:"secondary_check" validate:"gte=0,ltefield=DirectClassification"`
	ScoreDifference      int `json:"score_difference" yaml:"score_difference" toml:"score_difference" validate:"gte=0"`
}

// Weights are the per-occurrence points of each keyword tier
type Weights struct {
	High   int `json:"high" yaml:"high" toml:"high" validate:"gte=0"`
	Medium int `json:"medium" yaml:"medium" toml:"medium" validate:"gte=0"`
	Low    int `json:"low" yaml:"low" toml:"low" validate:"gte=0"`
}

// Category holds the keyword tiers of one category
type Category struct {
	HighWeight   []string `json:"high_weight" yaml:"high_weight" toml:"high_weight" validate:"dive,required"`
	MediumWeight []string `json:"medium_weight" yaml:"medium_weight" toml:"medium_weight" validate:"dive,required"`
	LowWeight    []string `json:"low_weight" yaml:"low_weight" toml:"low_weight" validate:"dive,required"`
	Multiplier   float64  `json:"multiplier,omitempty" yaml:"multiplier,omitempty" toml:"multiplier,omitempty" validate:"gte=0"`
}

// KeywordCount returns the number of keywords across all tiers.
func (c Category) KeywordCount() int {
	return len(c.HighWeight) + len(c.MediumWeight) + len(c.LowWeight)
}

// Encoding configures detection and fallback decoding
type Encoding struct {
	SupportedEncodings []string `json:"supported_encodings" yaml:"supported_encodings" toml:"supported_encodings"`
	DetectionEncodings []string `json:"detection_encodings" yaml:"detection_encodings" toml:"detection_encodings"`
	MinConfidence      float64  `json:"min_confidence" yaml:"min_confidence" toml:"min_confidence" validate:"gte=0,lte=1"`
	ExpectedScript     string   `json:"expected_script,omitempty" yaml:"expected_script,omitempty" toml:"expected_script,omitempty"`
}

// Script returns the unicode range table of ExpectedScript, or nil.
func (e Encoding) Script() *unicode.RangeTable {
	if e.ExpectedScript == "" {
		return nil
	}
	return unicode.Scripts[e.ExpectedScript]
}

// Processing configures batch sizes and sampling
type Processing struct {
	BatchSize      int            `json:"batch_size" yaml:"batch_size" toml:"batch_size" validate:"gte=0"`
	Workers        int            `json:"workers" yaml:"workers" toml:"workers" validate:"gte=0"`
	PendingDir     string         `json:"pending_dir" yaml:"pending_dir" toml:"pending_dir"`
	HoldingDir     string         `json:"holding_dir" yaml:"holding_dir" toml:"holding_dir"`
	TextExtraction TextExtraction `json:"text_extraction" yaml:"text_extraction" toml:"text_extraction"`
}

// TextExtraction configures the text sampler
type TextExtraction struct {
	BeginChars          int    `json:"begin_chars" yaml:"begin_chars" toml:"begin_chars" validate:"gte=0"`
	RandomFragmentCount int    `json:"random_fragment_count" yaml:"random_fragment_count" toml:"random_fragment_count" validate:"gte=0"`
	RandomFragmentSize  int    `json:"random_fragment_size" yaml:"random_fragment_size" toml:"random_fragment_size" validate:"gte=0"`
	Seed                uint64 `json:"seed" yaml:"seed" toml:"seed"`
}

// Scoring configures the keyword scorer
type Scoring struct {
	DuplicateMode   string `json:"duplicate_mode" yaml:"duplicate_mode" toml:"duplicate_mode" validate:"omitempty,oneof=additive capped"`
	IncludeFilename *bool  `json:"include_filename,omitempty" yaml:"include_filename,omitempty" toml:"include_filename,omitempty"`
}

// FilenameScored reports whether the file stem is scored alongside the sample.
func (s Scoring) FilenameScored() bool {
	return s.IncludeFilename == nil || *s.IncludeFilename
}

// Paths locates the library and its bookkeeping directories. Relative
// BackupDir and LogsDir are resolved against LibraryDir.
type Paths struct {
	LibraryDir string `json:"library_dir" yaml:"library_dir" toml:"library_dir"`
	BackupDir  string `json:"backup_dir" yaml:"backup_dir" toml:"backup_dir"`
	LogsDir    string `json:"logs_dir" yaml:"logs_dir" toml:"logs_dir"`
}

// Classification is the subset of the configuration consumed by the scorer.
type Classification struct {
	Weights    Weights
	Categories map[string]Category
	Scoring    Scoring
}

// Classification returns the scorer's view of the configuration.
func (c *Config) Classification() Classification {
	return Classification{
		Weights:    c.Weights,
		Categories: c.Categories,
		Scoring:    c.Scoring,
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Thresholds: Thresholds{
			DirectClassification: DefaultDirectThreshold,
			SecondaryCheck:       DefaultSecondaryThreshold,
			ScoreDifference:      DefaultScoreDifference,
		},
		Weights: Weights{
			High:   DefaultHighWeight,
			Medium: DefaultMediumWeight,
			Low:    DefaultLowWeight,
		},
		Categories: DefaultCategories(),
		Encoding: Encoding{
			SupportedEncodings: charset.DefaultSupported(),
			DetectionEncodings: charset.DefaultDetectionOrder(),
			MinConfidence:      DefaultMinConfidence,
			ExpectedScript:     "Han",
		},
		Processing: Processing{
			BatchSize:  DefaultBatchSize,
			Workers:    DefaultWorkers,
			PendingDir: DefaultPendingDir,
			HoldingDir: DefaultHoldingDir,
			TextExtraction: TextExtraction{
				BeginChars:          DefaultBeginChars,
				RandomFragmentCount: DefaultFragmentCount,
				RandomFragmentSize:  DefaultFragmentSize,
				Seed:                DefaultSeed,
			},
		},
		Scoring: Scoring{
			DuplicateMode: DuplicateAdditive,
		},
		Paths: Paths{
			BackupDir: DefaultBackupDir,
			LogsDir:   DefaultLogsDir,
		},
	}
}

// DefaultCategories is the keyword table shipped with the tool.
func DefaultCategories() map[string]Category {
	return map[string]Category{
		"01-玄幻": {
			HighWeight:   []string{"玄幻", "异界", "斗气", "修炼"},
			MediumWeight: []string{"魔法", "境界", "武者"},
			LowWeight:    []string{"强者", "等级", "战斗"},
			Multiplier:   1,
		},
		"02-奇幻": {
			HighWeight:   []string{"奇幻", "魔法", "精灵", "魔法师"},
			MediumWeight: []string{"法师", "魔兽", "巫师"},
			LowWeight:    []string{"魔力", "咒语", "魔法学院"},
			Multiplier:   1,
		},
		"05-都市": {
			HighWeight:   []string{"都市", "重生", "系统", "签到"},
			MediumWeight: []string{"现代", "都市生活", "商战"},
			LowWeight:    []string{"都市情感", "职场", "创业"},
			Multiplier:   1,
		},
		"10-科幻": {
			HighWeight:   []string{"科幻", "星际", "未来", "机甲"},
			MediumWeight: []string{"太空", "科技", "星球"},
			LowWeight:    []string{"外星", "时空", "变异"},
			Multiplier:   1,
		},
	}
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// Zero numbers and empty strings count as unset unless the parsed document
// assigned them (see IsSet) for thresholds, weights, min_confidence and the
// text extraction settings. A non-empty category table replaces the default
// one entirely.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Thresholds.DirectClassification == 0 && !c.IsSet("thresholds.direct_classification") {
		result.Thresholds.DirectClassification = defaults.Thresholds.DirectClassification
	}
	if result.Thresholds.SecondaryCheck == 0 && !c.IsSet("thresholds.secondary_check") {
		result.Thresholds.SecondaryCheck = defaults.Thresholds.SecondaryCheck
	}
	if result.Thresholds.ScoreDifference == 0 && !c.IsSet("thresholds.score_difference") {
		result.Thresholds.ScoreDifference = defaults.Thresholds.ScoreDifference
	}

	if result.Weights.High == 0 && !c.IsSet("weights.high") {
		result.Weights.High = defaults.Weights.High
	}
	if result.Weights.Medium == 0 && !c.IsSet("weights.medium") {
		result.Weights.Medium = defaults.Weights.Medium
	}
	if result.Weights.Low == 0 && !c.IsSet("weights.low") {
		result.Weights.Low = defaults.Weights.Low
	}

	if len(result.Categories) == 0 {
		result.Categories = defaults.Categories
	}
	categories := make(map[string]Category, len(result.Categories))
	for id, cat := range result.Categories {
		if cat.Multiplier == 0 {
			cat.Multiplier = 1
		}
		categories[id] = cat
	}
	result.Categories = categories

	if len(result.Encoding.SupportedEncodings) == 0 {
		result.Encoding.SupportedEncodings = defaults.Encoding.SupportedEncodings
	}
	if len(result.Encoding.DetectionEncodings) == 0 {
		result.Encoding.DetectionEncodings = defaults.Encoding.DetectionEncodings
	}
	if result.Encoding.MinConfidence == 0 && !c.IsSet("encoding.min_confidence") {
		result.Encoding.MinConfidence = defaults.Encoding.MinConfidence
	}
	if result.Encoding.ExpectedScript == "" {
		result.Encoding.ExpectedScript = defaults.Encoding.ExpectedScript
	}

	if result.Processing.BatchSize == 0 {
		result.Processing.BatchSize = defaults.Processing.BatchSize
	}
	if result.Processing.Workers == 0 {
		result.Processing.Workers = defaults.Processing.Workers
	}
	if result.Processing.PendingDir == "" {
		result.Processing.PendingDir = defaults.Processing.PendingDir
	}
	if result.Processing.HoldingDir == "" {
		result.Processing.HoldingDir = defaults.Processing.HoldingDir
	}
	te := &result.Processing.TextExtraction
	if te.BeginChars == 0 && !c.IsSet("processing.text_extraction.begin_chars") {
		te.BeginChars = defaults.Processing.TextExtraction.BeginChars
	}
	if te.RandomFragmentCount == 0 && !c.IsSet("processing.text_extraction.random_fragment_count") {
		te.RandomFragmentCount = defaults.Processing.TextExtraction.RandomFragmentCount
	}
	if te.RandomFragmentSize == 0 && !c.IsSet("processing.text_extraction.random_fragment_size") {
		te.RandomFragmentSize = defaults.Processing.TextExtraction.RandomFragmentSize
	}
	if te.Seed == 0 && !c.IsSet("processing.text_extraction.seed") {
		te.Seed = defaults.Processing.TextExtraction.Seed
	}

	if result.Scoring.DuplicateMode == "" {
		result.Scoring.DuplicateMode = defaults.Scoring.DuplicateMode
	}
	if result.Scoring.IncludeFilename == nil {
		result.Scoring.IncludeFilename = defaults.Scoring.IncludeFilename
	}

	if result.Paths.LibraryDir == "" {
		result.Paths.LibraryDir = defaults.Paths.LibraryDir
	}
	if result.Paths.BackupDir == "" {
		result.Paths.BackupDir = defaults.Paths.BackupDir
	}
	if result.Paths.LogsDir == "" {
		result.Paths.LogsDir = defaults.Paths.LogsDir
	}

	return result
}
