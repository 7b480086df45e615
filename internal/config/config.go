package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/guimove/binfit/internal/model"
	"github.com/guimove/binfit/pkg/binpack"
)

// Config is the top-level configuration for binfit.
type Config struct {
	Packing    PackingConfig    `mapstructure:"packing" yaml:"packing"`
	Source     SourceConfig     `mapstructure:"source" yaml:"source"`
	Prometheus PrometheusConfig `mapstructure:"prometheus" yaml:"prometheus"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes" yaml:"kubernetes"`
	AWS        AWSConfig        `mapstructure:"aws" yaml:"aws"`
	Scoring    ScoringConfig    `mapstructure:"scoring" yaml:"scoring"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

type PackingConfig struct {
	Algorithm  string   `mapstructure:"algorithm" yaml:"algorithm"`   // used by `pack`
	Algorithms []string `mapstructure:"algorithms" yaml:"algorithms"` // used by `compare`; empty = all
	Capacity   uint64   `mapstructure:"capacity" yaml:"capacity"`     // 0 = resolve from aws.instance_type
	Dimension  string   `mapstructure:"dimension" yaml:"dimension"`   // cpu, memory, or custom
}

type SourceConfig struct {
	Type   string `mapstructure:"type" yaml:"type"`     // file, prometheus, or kubernetes
	Path   string `mapstructure:"path" yaml:"path"`     // file source input
	Format string `mapstructure:"format" yaml:"format"` // json, yaml, csv; empty = by extension
}

type PrometheusConfig struct {
	URL        string        `mapstructure:"url" yaml:"url"`
	Query      string        `mapstructure:"query" yaml:"query"`             // empty = per-pod requests for the dimension
	NameLabels []string      `mapstructure:"name_labels" yaml:"name_labels"` // labels joined to name a task
	Scale      float64       `mapstructure:"scale" yaml:"scale"`             // multiplier applied to sample values
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type KubernetesConfig struct {
	Kubeconfig        string   `mapstructure:"kubeconfig" yaml:"kubeconfig"`
	Context           string   `mapstructure:"context" yaml:"context"`
	Namespace         string   `mapstructure:"namespace" yaml:"namespace"` // empty = all namespaces
	LabelSelector     string   `mapstructure:"label_selector" yaml:"label_selector"`
	ExcludeNamespaces []string `mapstructure:"exclude_namespaces" yaml:"exclude_namespaces"`
}

type AWSConfig struct {
	Region       string        `mapstructure:"region" yaml:"region"`
	InstanceType string        `mapstructure:"instance_type" yaml:"instance_type"`
	CacheDir     string        `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

type ScoringConfig struct {
	Weights ScoringWeightsConf `mapstructure:"weights" yaml:"weights"`
}

type ScoringWeightsConf struct {
	Efficiency    float64 `mapstructure:"efficiency" yaml:"efficiency"`
	Balance       float64 `mapstructure:"balance" yaml:"balance"`
	Fragmentation float64 `mapstructure:"fragmentation" yaml:"fragmentation"`
}

type ServerConfig struct {
	Addr                string        `mapstructure:"addr" yaml:"addr"`
	RateLimitRPS        float64       `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"` // 0 = disabled
	RateLimitBurst      int           `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	MaxTasks            int           `mapstructure:"max_tasks" yaml:"max_tasks"`
	ReadHeaderTimeout   time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period" yaml:"shutdown_grace_period"`
	RequestLogging      bool          `mapstructure:"request_logging" yaml:"request_logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // json or console
}

type OutputConfig struct {
	Format          string `mapstructure:"format" yaml:"format"`
	TopN            int    `mapstructure:"top_n" yaml:"top_n"`
	ShowTasks       bool   `mapstructure:"show_tasks" yaml:"show_tasks"`
	MetricsTextfile string `mapstructure:"metrics_textfile" yaml:"metrics_textfile"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Packing: PackingConfig{
			Algorithm: string(binpack.FirstFitDecreasingAlgorithm),
			Dimension: string(model.DimensionCustom),
		},
		Source: SourceConfig{
			Type: "file",
		},
		Prometheus: PrometheusConfig{
			NameLabels: []string{"namespace", "pod"},
			Scale:      1.0,
			Timeout:    60 * time.Second,
		},
		Kubernetes: KubernetesConfig{
			ExcludeNamespaces: []string{
				"kube-system",
				"kube-node-lease",
			},
		},
		AWS: AWSConfig{
			Region:   detectRegion(),
			CacheDir: defaultCacheDir(),
			CacheTTL: 24 * time.Hour,
		},
		Scoring: ScoringConfig{
			Weights: ScoringWeightsConf{
				Efficiency:    0.70,
				Balance:       0.15,
				Fragmentation: 0.15,
			},
		},
		Server: ServerConfig{
			Addr:                ":8080",
			RateLimitRPS:        25,
			RateLimitBurst:      50,
			MaxTasks:            100_000,
			ReadHeaderTimeout:   5 * time.Second,
			ShutdownGracePeriod: 10 * time.Second,
			RequestLogging:      true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Format: "table",
			TopN:   3,
		},
	}
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	if _, err := binpack.ParseAlgorithm(c.Packing.Algorithm); err != nil {
		return fmt.Errorf("packing.algorithm: %w", err)
	}
	for _, a := range c.Packing.Algorithms {
		if _, err := binpack.ParseAlgorithm(a); err != nil {
			return fmt.Errorf("packing.algorithms: %w", err)
		}
	}
	dim, err := model.ParseDimension(c.Packing.Dimension)
	if err != nil {
		return fmt.Errorf("packing.dimension: %w", err)
	}

	validSources := map[string]bool{"file": true, "prometheus": true, "kubernetes": true}
	if !validSources[c.Source.Type] {
		return fmt.Errorf("source type must be file, prometheus, or kubernetes, got %q", c.Source.Type)
	}
	if c.Source.Type == "prometheus" && c.Prometheus.URL == "" {
		return fmt.Errorf("prometheus.url is required for the prometheus source")
	}
	if c.Source.Type == "kubernetes" && dim == model.DimensionCustom {
		return fmt.Errorf("the kubernetes source requires packing.dimension cpu or memory")
	}
	if c.Prometheus.Scale <= 0 {
		return fmt.Errorf("prometheus.scale must be positive, got %v", c.Prometheus.Scale)
	}

	validFormats := map[string]bool{"table": true, "json": true, "markdown": true, "csv": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output format must be table, json, markdown, or csv, got %q", c.Output.Format)
	}
	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("server.rate_limit_rps must be non-negative, got %v", c.Server.RateLimitRPS)
	}
	if c.Output.TopN <= 0 {
		c.Output.TopN = 3
	}
	if c.Server.MaxTasks <= 0 {
		c.Server.MaxTasks = 100_000
	}
	return nil
}

// ValidateCapacity checks that a bin capacity can be determined.
// Commands that pack call it in addition to Validate.
func (c *Config) ValidateCapacity() error {
	if c.Packing.Capacity > 0 {
		return nil
	}
	if c.AWS.InstanceType == "" {
		return fmt.Errorf("either packing.capacity or aws.instance_type must be set")
	}
	if c.Dimension() == model.DimensionCustom {
		return fmt.Errorf("aws.instance_type requires packing.dimension cpu or memory")
	}
	return nil
}

// Dimension returns the parsed packing dimension. Call after Validate.
func (c *Config) Dimension() model.Dimension {
	d, _ := model.ParseDimension(c.Packing.Dimension)
	return d
}

// ScoringWeights converts the configured weights to the model type.
func (c *Config) ScoringWeights() model.ScoringWeights {
	return model.ScoringWeights{
		Efficiency:    c.Scoring.Weights.Efficiency,
		Balance:       c.Scoring.Weights.Balance,
		Fragmentation: c.Scoring.Weights.Fragmentation,
	}
}

// detectRegion checks environment variables for the AWS region.
func detectRegion() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	if r := os.Getenv("AWS_DEFAULT_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "binfit")
}
