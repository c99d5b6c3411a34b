// Package config loads and watches the search proxy's configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults (NewConfig)
//  2. User/global config (~/.config/searchproxy/config.yaml)
//  3. Project config (.searchproxy.yaml in the working directory)
//  4. Environment variables (SEARCHPROXY_*)
//
// The result is a frozen snapshot; callers that need live-reload semantics
// should use Watcher, which publishes new snapshots atomically and never
// mutates a Config a caller already holds.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete search proxy configuration.
// component specification.
type Config struct {
	Tokenization TokenizationConfig `yaml:"tokenization" json:"tokenization"`
	Search       SearchConfig       `yaml:"search" json:"search"`
	Ranking      RankingConfig      `yaml:"ranking" json:"ranking"`
	Performance  PerformanceConfig  `yaml:"performance" json:"performance"`
	Backend      BackendConfig      `yaml:"backend" json:"backend"`
	Server       ServerConfig       `yaml:"server" json:"server"`
}

// TokenizationConfig configures the Query Processor's tokenization step.
type TokenizationConfig struct {
	PrimaryEngine            string            `yaml:"primary_engine" json:"primary_engine"`
	FallbackEngines          []string          `yaml:"fallback_engines" json:"fallback_engines"`
	TimeoutMS                int               `yaml:"timeout_ms" json:"timeout_ms"`
	ConfidenceThreshold      float64           `yaml:"confidence_threshold" json:"confidence_threshold"`
	EnableCompoundSplitting  bool              `yaml:"enable_compound_splitting" json:"enable_compound_splitting"`
	PreserveOriginal         bool              `yaml:"preserve_original" json:"preserve_original"`
	MixedLanguageDetection   bool              `yaml:"mixed_language_detection" json:"mixed_language_detection"`
	// EngineEndpoints maps an engine id (e.g. "newmm") to the base URL of
	// the sidecar tokenization service that serves it.
	EngineEndpoints map[string]string `yaml:"engine_endpoints" json:"engine_endpoints"`
}

// SearchConfig configures the Search Executor's fan-out behaviour.
type SearchConfig struct {
	ParallelSearches       bool `yaml:"parallel_searches" json:"parallel_searches"`
	MaxConcurrentSearches  int  `yaml:"max_concurrent_searches" json:"max_concurrent_searches"`
	TimeoutMS              int  `yaml:"timeout_ms" json:"timeout_ms"`
	RetryAttempts          int  `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelayMS           int  `yaml:"retry_delay_ms" json:"retry_delay_ms"`
	EnableFallbackSearch   bool `yaml:"enable_fallback_search" json:"enable_fallback_search"`
	MaxQueryVariants       int  `yaml:"max_query_variants" json:"max_query_variants"`
	DeduplicationEnabled   bool `yaml:"deduplication_enabled" json:"deduplication_enabled"`
}

// RankingConfig configures the Result Ranker.
type RankingConfig struct {
	Algorithm                  string  `yaml:"algorithm" json:"algorithm"`
	BoostExactMatches          float64 `yaml:"boost_exact_matches" json:"boost_exact_matches"`
	BoostThaiMatches           float64 `yaml:"boost_thai_matches" json:"boost_thai_matches"`
	BoostCompoundMatches       float64 `yaml:"boost_compound_matches" json:"boost_compound_matches"`
	DecayFactor                float64 `yaml:"decay_factor" json:"decay_factor"`
	PositionDecayEnabled       bool    `yaml:"position_decay_enabled" json:"position_decay_enabled"`
	MinScoreThreshold          float64 `yaml:"min_score_threshold" json:"min_score_threshold"`
	MaxResultsPerVariant       int     `yaml:"max_results_per_variant" json:"max_results_per_variant"`
	EnableScoreNormalization   bool    `yaml:"enable_score_normalization" json:"enable_score_normalization"`
	SimilarityThreshold        float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	TokenizationConfidenceFactor float64 `yaml:"tokenization_confidence_factor" json:"tokenization_confidence_factor"`
	VariantWeightFactor        float64 `yaml:"variant_weight_factor" json:"variant_weight_factor"`
	ABTestingEnabled           bool    `yaml:"ab_testing_enabled" json:"ab_testing_enabled"`
	ABTestAlgorithm            string  `yaml:"ab_test_algorithm" json:"ab_test_algorithm"`
	ABTestTrafficPercentage    float64 `yaml:"ab_test_traffic_percentage" json:"ab_test_traffic_percentage"`
}

// PerformanceConfig bounds request size and caching.
type PerformanceConfig struct {
	MaxQueryLength int  `yaml:"max_query_length" json:"max_query_length"`
	MaxBatchSize   int  `yaml:"max_batch_size" json:"max_batch_size"`
	CacheEnabled   bool `yaml:"cache_enabled" json:"cache_enabled"`
	CacheSize      int  `yaml:"cache_size" json:"cache_size"`
}

// BackendConfig configures the downstream Meilisearch-compatible client.
type BackendConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	APIKey   string `yaml:"api_key" json:"api_key"`
}

// ServerConfig configures ambient process behaviour.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
	PIDFile  string `yaml:"pid_file" json:"pid_file"`
}

// NewConfig returns a Config populated with the documented defaults.
func NewConfig() *Config {
	return &Config{
		Tokenization: TokenizationConfig{
			PrimaryEngine:           "newmm",
			FallbackEngines:         []string{"attacut", "deepcut"},
			TimeoutMS:               5000,
			ConfidenceThreshold:     0.7,
			EnableCompoundSplitting: true,
			PreserveOriginal:        true,
			MixedLanguageDetection:  true,
			EngineEndpoints: map[string]string{
				"newmm":   "http://localhost:8001",
				"attacut": "http://localhost:8002",
				"deepcut": "http://localhost:8003",
			},
		},
		Search: SearchConfig{
			ParallelSearches:      true,
			MaxConcurrentSearches: 5,
			TimeoutMS:             10000,
			RetryAttempts:         2,
			RetryDelayMS:          100,
			EnableFallbackSearch:  true,
			MaxQueryVariants:      5,
			DeduplicationEnabled:  true,
		},
		Ranking: RankingConfig{
			Algorithm:                    "weighted",
			BoostExactMatches:            2.0,
			BoostThaiMatches:             1.5,
			BoostCompoundMatches:         1.3,
			DecayFactor:                  0.1,
			PositionDecayEnabled:         false,
			MinScoreThreshold:            0.1,
			MaxResultsPerVariant:         100,
			EnableScoreNormalization:     true,
			SimilarityThreshold:          0.85,
			TokenizationConfidenceFactor: 0.5,
			VariantWeightFactor:          1.0,
			ABTestingEnabled:             false,
			ABTestAlgorithm:              "optimised",
			ABTestTrafficPercentage:      0.1,
		},
		Performance: PerformanceConfig{
			MaxQueryLength: 1000,
			MaxBatchSize:   50,
			CacheEnabled:   false,
			CacheSize:      1000,
		},
		Backend: BackendConfig{
			Endpoint: "http://localhost:7700",
		},
		Server: ServerConfig{
			LogLevel: "info",
			LogFile:  "",
			PIDFile:  "",
		},
	}
}

// Load builds a Config from defaults, the user config, the project config
// found under dir, and environment variable overrides, in that order, then
// validates the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromDir(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// GetUserConfigPath returns the XDG-compliant path to the user configuration file.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "searchproxy", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "searchproxy", "config.yaml")
	}
	return filepath.Join(home, ".config", "searchproxy", "config.yaml")
}

// UserConfigExists reports whether the user configuration file is present.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// GetUserConfigDir returns the directory containing the user configuration file.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromDir loads .searchproxy.yaml or .searchproxy.yml from dir, if present.
func (c *Config) loadFromDir(dir string) error {
	for _, name := range []string{".searchproxy.yaml", ".searchproxy.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero fields of other onto c.
func (c *Config) mergeWith(other *Config) {
	t, o := &c.Tokenization, &other.Tokenization
	if o.PrimaryEngine != "" {
		t.PrimaryEngine = o.PrimaryEngine
	}
	if len(o.FallbackEngines) > 0 {
		t.FallbackEngines = o.FallbackEngines
	}
	if o.TimeoutMS != 0 {
		t.TimeoutMS = o.TimeoutMS
	}
	if o.ConfidenceThreshold != 0 {
		t.ConfidenceThreshold = o.ConfidenceThreshold
	}
	for engine, url := range o.EngineEndpoints {
		if t.EngineEndpoints == nil {
			t.EngineEndpoints = map[string]string{}
		}
		t.EngineEndpoints[engine] = url
	}

	s, so := &c.Search, &other.Search
	if so.MaxConcurrentSearches != 0 {
		s.MaxConcurrentSearches = so.MaxConcurrentSearches
	}
	if so.TimeoutMS != 0 {
		s.TimeoutMS = so.TimeoutMS
	}
	if so.RetryAttempts != 0 {
		s.RetryAttempts = so.RetryAttempts
	}
	if so.RetryDelayMS != 0 {
		s.RetryDelayMS = so.RetryDelayMS
	}
	if so.MaxQueryVariants != 0 {
		s.MaxQueryVariants = so.MaxQueryVariants
	}

	r, ro := &c.Ranking, &other.Ranking
	if ro.Algorithm != "" {
		r.Algorithm = ro.Algorithm
	}
	if ro.BoostExactMatches != 0 {
		r.BoostExactMatches = ro.BoostExactMatches
	}
	if ro.BoostThaiMatches != 0 {
		r.BoostThaiMatches = ro.BoostThaiMatches
	}
	if ro.BoostCompoundMatches != 0 {
		r.BoostCompoundMatches = ro.BoostCompoundMatches
	}
	if ro.DecayFactor != 0 {
		r.DecayFactor = ro.DecayFactor
	}
	r.PositionDecayEnabled = r.PositionDecayEnabled || ro.PositionDecayEnabled
	if ro.MaxResultsPerVariant != 0 {
		r.MaxResultsPerVariant = ro.MaxResultsPerVariant
	}
	if ro.TokenizationConfidenceFactor != 0 {
		r.TokenizationConfidenceFactor = ro.TokenizationConfidenceFactor
	}
	if ro.VariantWeightFactor != 0 {
		r.VariantWeightFactor = ro.VariantWeightFactor
	}
	r.ABTestingEnabled = r.ABTestingEnabled || ro.ABTestingEnabled
	if ro.MinScoreThreshold != 0 {
		r.MinScoreThreshold = ro.MinScoreThreshold
	}
	if ro.SimilarityThreshold != 0 {
		r.SimilarityThreshold = ro.SimilarityThreshold
	}
	if ro.ABTestAlgorithm != "" {
		r.ABTestAlgorithm = ro.ABTestAlgorithm
	}
	if ro.ABTestTrafficPercentage != 0 {
		r.ABTestTrafficPercentage = ro.ABTestTrafficPercentage
	}

	p, po := &c.Performance, &other.Performance
	if po.MaxQueryLength != 0 {
		p.MaxQueryLength = po.MaxQueryLength
	}
	if po.MaxBatchSize != 0 {
		p.MaxBatchSize = po.MaxBatchSize
	}
	if po.CacheSize != 0 {
		p.CacheSize = po.CacheSize
	}
	p.CacheEnabled = p.CacheEnabled || po.CacheEnabled

	b, bo := &c.Backend, &other.Backend
	if bo.Endpoint != "" {
		b.Endpoint = bo.Endpoint
	}
	if bo.APIKey != "" {
		b.APIKey = bo.APIKey
	}

	srv, so2 := &c.Server, &other.Server
	if so2.LogLevel != "" {
		srv.LogLevel = so2.LogLevel
	}
	if so2.LogFile != "" {
		srv.LogFile = so2.LogFile
	}
	if so2.PIDFile != "" {
		srv.PIDFile = so2.PIDFile
	}
}

// applyEnvOverrides applies SEARCHPROXY_* environment variable overrides,
// the highest-precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SEARCHPROXY_BACKEND_ENDPOINT"); v != "" {
		c.Backend.Endpoint = v
	}
	if v := os.Getenv("SEARCHPROXY_BACKEND_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}
	if v := os.Getenv("SEARCHPROXY_MAX_CONCURRENT_SEARCHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxConcurrentSearches = n
		}
	}
	if v := os.Getenv("SEARCHPROXY_RANKING_ALGORITHM"); v != "" {
		c.Ranking.Algorithm = v
	}
	if v := os.Getenv("SEARCHPROXY_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks invariants the spec treats as fatal startup misconfiguration.
func (c *Config) Validate() error {
	if c.Tokenization.TimeoutMS < 100 || c.Tokenization.TimeoutMS > 30000 {
		return fmt.Errorf("tokenization.timeout_ms must be in [100, 30000], got %d", c.Tokenization.TimeoutMS)
	}
	if c.Tokenization.ConfidenceThreshold < 0 || c.Tokenization.ConfidenceThreshold > 1 {
		return fmt.Errorf("tokenization.confidence_threshold must be in [0, 1], got %f", c.Tokenization.ConfidenceThreshold)
	}
	if c.Search.MaxConcurrentSearches < 1 {
		return fmt.Errorf("search.max_concurrent_searches must be >= 1, got %d", c.Search.MaxConcurrentSearches)
	}
	if c.Search.TimeoutMS < 1 {
		return fmt.Errorf("search.timeout_ms must be >= 1, got %d", c.Search.TimeoutMS)
	}
	switch c.Ranking.Algorithm {
	case "weighted", "optimised", "simple", "experimental":
	default:
		return fmt.Errorf("ranking.algorithm %q is not one of weighted|optimised|simple|experimental", c.Ranking.Algorithm)
	}
	if c.Ranking.ABTestingEnabled {
		switch c.Ranking.ABTestAlgorithm {
		case "weighted", "optimised", "simple", "experimental":
		default:
			return fmt.Errorf("ranking.ab_test_algorithm %q is not one of weighted|optimised|simple|experimental", c.Ranking.ABTestAlgorithm)
		}
	}
	if c.Performance.MaxQueryLength < 1 {
		return fmt.Errorf("performance.max_query_length must be >= 1, got %d", c.Performance.MaxQueryLength)
	}
	if c.Performance.MaxBatchSize < 1 {
		return fmt.Errorf("performance.max_batch_size must be >= 1, got %d", c.Performance.MaxBatchSize)
	}
	return nil
}

// WriteYAML writes the configuration to path, creating parent directories as needed.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
