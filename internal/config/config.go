// Package config loads runtime configuration from an optional YAML file
// and environment variables. Environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is consulted when FACE_FINDER_CONFIG is not set.
const DefaultConfigFile = "face-finder.yaml"

type Config struct {
	Extractor ExtractorConfig `yaml:"extractor"`
	Search    SearchConfig    `yaml:"search"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Store     StoreConfig     `yaml:"store"`
}

// ExtractorConfig points at the face embedding service.
type ExtractorConfig struct {
	URL string `yaml:"url"` // defaults to http://localhost:8000
}

// SearchConfig holds the match thresholds.
type SearchConfig struct {
	// Tolerance is the maximum embedding distance accepted as a match.
	Tolerance float64 `yaml:"tolerance"`
	// MinConfidence is the minimum confidence percentage accepted as a match.
	MinConfidence float64 `yaml:"min_confidence"`
}

// NormalizeConfig holds the adaptive normalizer settings.
type NormalizeConfig struct {
	TargetSizeKB   int `yaml:"target_size_kb"`
	MaxDimension   int `yaml:"max_dimension"`
	InitialQuality int `yaml:"initial_quality"`
	QualityFloor   int `yaml:"quality_floor"`
	QualityStep    int `yaml:"quality_step"`
	MaxAttempts    int `yaml:"max_attempts"`
}

// StoreConfig locates the album directory tree.
type StoreConfig struct {
	Root string `yaml:"root"` // defaults to ./albums
}

// Defaults returns a config with every value set to its documented default.
func Defaults() *Config {
	return &Config{
		Extractor: ExtractorConfig{
			URL: "http://localhost:8000",
		},
		Search: SearchConfig{
			Tolerance:     0.6,
			MinConfidence: 55.0,
		},
		Normalize: NormalizeConfig{
			TargetSizeKB:   500,
			MaxDimension:   1920,
			InitialQuality: 85,
			QualityFloor:   30,
			QualityStep:    5,
			MaxAttempts:    10,
		},
		Store: StoreConfig{
			Root: "albums",
		},
	}
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the current value if the env var is unset, empty, or invalid.
func envInt(key string, current int) int {
	s := os.Getenv(key)
	if s == "" {
		return current
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return current
}

// envFloat reads an environment variable as a float64, keeping the current
// value when unset or unparseable.
func envFloat(key string, current float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return current
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return current
}

func envString(key, current string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return current
}

// Load builds the configuration: defaults, then the optional YAML file,
// then environment variable overrides. The result is validated.
func Load() (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("FACE_FINDER_CONFIG")
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.Extractor.URL = envString("EXTRACTOR_URL", cfg.Extractor.URL)
	cfg.Store.Root = envString("ALBUMS_ROOT", cfg.Store.Root)
	cfg.Search.Tolerance = envFloat("SEARCH_TOLERANCE", cfg.Search.Tolerance)
	cfg.Search.MinConfidence = envFloat("SEARCH_MIN_CONFIDENCE", cfg.Search.MinConfidence)
	cfg.Normalize.TargetSizeKB = envInt("NORMALIZE_TARGET_SIZE_KB", cfg.Normalize.TargetSizeKB)
	cfg.Normalize.MaxDimension = envInt("NORMALIZE_MAX_DIMENSION", cfg.Normalize.MaxDimension)
	cfg.Normalize.InitialQuality = envInt("NORMALIZE_INITIAL_QUALITY", cfg.Normalize.InitialQuality)
	cfg.Normalize.QualityFloor = envInt("NORMALIZE_QUALITY_FLOOR", cfg.Normalize.QualityFloor)
	cfg.Normalize.QualityStep = envInt("NORMALIZE_QUALITY_STEP", cfg.Normalize.QualityStep)
	cfg.Normalize.MaxAttempts = envInt("NORMALIZE_MAX_ATTEMPTS", cfg.Normalize.MaxAttempts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would produce nonsensical scans or
// normalization runs. Runs before any scan or normalization is allowed.
func (c *Config) Validate() error {
	if c.Search.Tolerance < 0 {
		return fmt.Errorf("search tolerance must be >= 0, got %v", c.Search.Tolerance)
	}
	if c.Normalize.TargetSizeKB <= 0 {
		return fmt.Errorf("normalize target size must be positive, got %d", c.Normalize.TargetSizeKB)
	}
	if c.Normalize.MaxDimension <= 0 {
		return fmt.Errorf("normalize max dimension must be positive, got %d", c.Normalize.MaxDimension)
	}
	if c.Normalize.InitialQuality < 1 || c.Normalize.InitialQuality > 100 {
		return fmt.Errorf("initial quality must be in 1..100, got %d", c.Normalize.InitialQuality)
	}
	if c.Normalize.QualityFloor < 1 || c.Normalize.QualityFloor > c.Normalize.InitialQuality {
		return fmt.Errorf("quality floor must be between 1 and initial quality, got %d", c.Normalize.QualityFloor)
	}
	if c.Normalize.QualityStep <= 0 {
		return fmt.Errorf("quality step must be positive, got %d", c.Normalize.QualityStep)
	}
	if c.Normalize.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.Normalize.MaxAttempts)
	}
	return nil
}
