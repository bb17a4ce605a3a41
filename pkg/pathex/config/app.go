package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/cognicore/pathex/internal/logging"
	"github.com/cognicore/pathex/pkg/pathex/fuzz"
	"github.com/cognicore/pathex/pkg/pathex/internalerr"
	"github.com/cognicore/pathex/pkg/pathex/report"
)

// EnvPrefix prefixes environment overrides, e.g. PATHEX_MATCH_THRESHOLD.
const EnvPrefix = "PATHEX_"

const maxConfigFileSize = 1024 * 1024

// AppConfig is the run configuration of the pathex command.
type AppConfig struct {
	Data    DataConfig     `koanf:"data"`
	Match   MatchConfig    `koanf:"match"`
	Log     logging.Config `koanf:"log"`
	Section string         `koanf:"section"`
}

// DataConfig locates the input files and the database.
type DataConfig struct {
	Reports  string `koanf:"reports"`
	Labels   string `koanf:"labels"`
	RadLex   string `koanf:"radlex"`
	Vectors  string `koanf:"vectors"`
	Stoplist string `koanf:"stoplist"`
	Termset  string `koanf:"termset"`
	Lexicon  string `koanf:"lexicon"`
	DB       string `koanf:"db"`
	OutDir   string `koanf:"out_dir"`
}

// MatchConfig selects and tunes the matching strategy. Strategy is one
// name or a comma-separated chain such as "negation,fuzzy".
type MatchConfig struct {
	Strategy        string  `koanf:"strategy"`
	LookIn          string  `koanf:"look_in"`
	Threshold       float64 `koanf:"threshold"`
	Scorer          string  `koanf:"scorer"`
	VectorThreshold float64 `koanf:"vector_threshold"`
	Tokens          bool    `koanf:"tokens"`
}

// Strategy names.
const (
	StrategyExact    = "exact"
	StrategyFuzzy    = "fuzzy"
	StrategyVector   = "vector"
	StrategyNegation = "negation"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() AppConfig {
	return AppConfig{
		Data: DataConfig{
			DB:     "pathex.db",
			OutDir: "impressions",
		},
		Match: MatchConfig{
			Strategy:        StrategyExact,
			LookIn:          string(report.LookInImpression),
			Threshold:       85,
			Scorer:          "partial_ratio",
			VectorThreshold: 0.5,
		},
		Log: logging.NewDefaultConfig(),
	}
}

// Strategies splits the strategy setting into matcher names.
func (m MatchConfig) Strategies() []string {
	var out []string
	for _, s := range strings.Split(m.Strategy, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks config for errors.
func (c *AppConfig) Validate() error {
	strategies := c.Match.Strategies()
	if len(strategies) == 0 {
		return fmt.Errorf("%w: match.strategy is empty", internalerr.ErrInvalidConfig)
	}
	for _, s := range strategies {
		switch s {
		case StrategyExact, StrategyFuzzy, StrategyVector, StrategyNegation:
		default:
			return fmt.Errorf("%w: unknown strategy %q", internalerr.ErrInvalidConfig, s)
		}
	}
	if _, err := report.ParseLookIn(c.Match.LookIn); err != nil {
		return fmt.Errorf("%w: match.look_in: %v", internalerr.ErrInvalidConfig, err)
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 100 {
		return fmt.Errorf("%w: match.threshold must be in [0,100], got %v", internalerr.ErrInvalidConfig, c.Match.Threshold)
	}
	if c.Match.VectorThreshold < -1 || c.Match.VectorThreshold > 1 {
		return fmt.Errorf("%w: match.vector_threshold must be in [-1,1], got %v", internalerr.ErrInvalidConfig, c.Match.VectorThreshold)
	}
	if _, err := fuzz.ScorerByName(c.Match.Scorer); err != nil {
		return fmt.Errorf("%w: match.scorer: %v", internalerr.ErrInvalidConfig, err)
	}
	if c.Section != "" {
		if _, ok := report.ParseBodySection(c.Section); !ok {
			return fmt.Errorf("%w: unknown body section %q", internalerr.ErrInvalidConfig, c.Section)
		}
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: log: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// Load reads configuration from an optional YAML file, then applies
// PATHEX_* environment overrides over the defaults.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("%w: config file %s exceeds %d bytes", internalerr.ErrInvalidConfig, path, maxConfigFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// PATHEX_MATCH_VECTOR_THRESHOLD -> match.vector_threshold
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
