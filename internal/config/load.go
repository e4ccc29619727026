package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/pipeline/preprocess"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

const (
	SourceCSV   = "csv"
	SourceStore = "store"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.Duration.String()) }

func Default() *Config {
	opts := preprocess.DefaultOptions()
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8000",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			MaxBatchSize:      1000,
			CORSOrigins:       []string{"*"},
		},
		Artifacts: ArtifactsConfig{Dir: "models"},
		Pipeline: PipelineConfig{
			Target:          opts.Target,
			CapColumns:      opts.CapColumns,
			LowerPercentile: opts.LowerPercentile,
			UpperPercentile: opts.UpperPercentile,
		},
		Training: TrainingConfig{
			DataPath:   filepath.Join("data", "housing.csv"),
			Source:     SourceCSV,
			ModelName:  "ridge_baseline",
			TestRatio:  preprocess.DefaultTestRatio,
			Seed:       preprocess.DefaultSeed,
			RidgeAlpha: 1.0,
		},
		Store: StoreConfig{Driver: "sqlite"},
		Cache: CacheConfig{TTL: Duration{Duration: 10 * time.Minute}},
	}
}

// Load reads defaults, then the file named by PREDICTOR_CONFIG_PATH (or
// config/config.yaml, config/config.yml, config/config.json in the working
// directory), then environment overrides, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := configPath(); path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPath() string {
	if p := strings.TrimSpace(os.Getenv("PREDICTOR_CONFIG_PATH")); p != "" {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readFile decodes over the defaults so a partial file only overrides what it names.
func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set("LOG_MODE", &cfg.Env)
	set("PREDICTOR_HTTP_ADDR", &cfg.HTTP.Addr)
	set("PREDICTOR_ARTIFACT_DIR", &cfg.Artifacts.Dir)
	set("PREDICTOR_DATA_PATH", &cfg.Training.DataPath)
	set("PREDICTOR_TRAINING_SOURCE", &cfg.Training.Source)
	set("STORE_DRIVER", &cfg.Store.Driver)
	set("STORE_DSN", &cfg.Store.DSN)
	set("REDIS_ADDR", &cfg.Cache.RedisAddr)
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = Duration{Duration: d}
		}
	}
	if v := strings.TrimSpace(os.Getenv("PREDICTOR_CORS_ORIGINS")); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) normalize() error {
	if c.Env == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = ":8000"
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		c.HTTP.MaxRequestBytes = 1 << 20
	}
	if c.HTTP.MaxBatchSize <= 0 {
		c.HTTP.MaxBatchSize = 1000
	}
	if strings.TrimSpace(c.Artifacts.Dir) == "" {
		return pkgerrors.Configuration("artifacts.dir", "is empty")
	}
	if _, err := preprocess.New(c.PipelineOptions()); err != nil {
		return err
	}
	known := housing.Descriptions()
	for _, col := range c.Pipeline.CapColumns {
		if _, ok := known[col]; !ok {
			return pkgerrors.Configuration("pipeline.cap_columns", "unknown column %q", col)
		}
	}
	if !(c.Training.TestRatio > 0 && c.Training.TestRatio < 1) {
		return pkgerrors.Configuration("training.test_ratio", "must be in (0, 1), got %v", c.Training.TestRatio)
	}
	if c.Training.RidgeAlpha < 0 {
		return pkgerrors.Configuration("training.ridge_alpha", "must be >= 0, got %v", c.Training.RidgeAlpha)
	}
	c.Training.Source = strings.ToLower(strings.TrimSpace(c.Training.Source))
	switch c.Training.Source {
	case "":
		c.Training.Source = SourceCSV
	case SourceCSV, SourceStore:
	default:
		return pkgerrors.Configuration("training.source", "want csv or store, got %q", c.Training.Source)
	}
	if c.Cache.TTL.Duration < 0 {
		return pkgerrors.Configuration("cache.ttl", "must not be negative")
	}
	return nil
}

func (c *Config) PipelineOptions() preprocess.Options {
	return preprocess.Options{
		Target:          c.Pipeline.Target,
		CapColumns:      append([]string(nil), c.Pipeline.CapColumns...),
		LowerPercentile: c.Pipeline.LowerPercentile,
		UpperPercentile: c.Pipeline.UpperPercentile,
	}
}
