package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`
	// MaxBatchSize caps the number of rows accepted by /predict-batch.
	MaxBatchSize int      `json:"max_batch_size" yaml:"max_batch_size"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins"`
}

type ArtifactsConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

type PipelineConfig struct {
	Target          string   `json:"target" yaml:"target"`
	CapColumns      []string `json:"cap_columns" yaml:"cap_columns"`
	LowerPercentile float64  `json:"lower_percentile" yaml:"lower_percentile"`
	UpperPercentile float64  `json:"upper_percentile" yaml:"upper_percentile"`
}

type TrainingConfig struct {
	DataPath string `json:"data_path" yaml:"data_path"`
	// Source is "csv" or "store".
	Source     string  `json:"source" yaml:"source"`
	ModelName  string  `json:"model_name" yaml:"model_name"`
	TestRatio  float64 `json:"test_ratio" yaml:"test_ratio"`
	Seed       uint64  `json:"seed" yaml:"seed"`
	RidgeAlpha float64 `json:"ridge_alpha" yaml:"ridge_alpha"`
}

type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

type CacheConfig struct {
	RedisAddr string   `json:"redis_addr" yaml:"redis_addr"`
	TTL       Duration `json:"ttl" yaml:"ttl"`
}

type Config struct {
	Env       string          `json:"env" yaml:"env"`
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Artifacts ArtifactsConfig `json:"artifacts" yaml:"artifacts"`
	Pipeline  PipelineConfig  `json:"pipeline" yaml:"pipeline"`
	Training  TrainingConfig  `json:"training" yaml:"training"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
}
