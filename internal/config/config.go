package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"dupesweep/internal/dedupe"
)

// TrashStagingDir is the staging folder name excluded from every scan so a
// previous soft-delete pass never feeds back into duplicate detection.
const TrashStagingDir = ".dupesweep-trash"

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics endpoint
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // 0 = unthrottled
}

type Config struct {
	Root           string         `yaml:"root" json:"root"`
	Excludes       []string       `yaml:"excludes" json:"excludes"`
	MinSizeBytes   int64          `yaml:"min_size_bytes" json:"min_size_bytes"`
	HashWorkers    int            `yaml:"hash_workers" json:"hash_workers"`
	SurvivorPolicy string         `yaml:"survivor_policy" json:"survivor_policy"`
	Prometheus     PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	ResourceLimits ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
	DatabasePath   string         `yaml:"database_path" json:"database_path"` // empty disables the audit log
	LogFile        string         `yaml:"log_file" json:"log_file"`
}

var (
	errInvalidRoot    = errors.New("root must be an existing directory")
	errNegativeSize   = errors.New("min_size_bytes cannot be negative")
	errInvalidWorkers = errors.New("hash_workers cannot be negative")
)

// Default returns the configuration used when no config file is given:
// scan the working directory, exclude the trash-staging folder, no metrics
// endpoint, no audit database.
func Default() *Config {
	cfg := &Config{}
	// Validation cannot fail on an empty config.
	_ = cfg.validateAndDefault()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.Root == "" {
		c.Root = "."
	}

	if c.MinSizeBytes < 0 {
		return errNegativeSize
	}
	if c.MinSizeBytes == 0 {
		c.MinSizeBytes = 1 // empty files are all identical and rarely worth reporting
	}

	if c.HashWorkers < 0 {
		return errInvalidWorkers
	}
	if c.HashWorkers == 0 {
		c.HashWorkers = runtime.NumCPU()
	}

	if _, err := dedupe.ParsePolicy(c.SurvivorPolicy); err != nil {
		return err
	}
	if c.SurvivorPolicy == "" {
		c.SurvivorPolicy = string(dedupe.PolicyFirstSeen)
	}

	// The trash-staging folder is always excluded.
	hasTrash := false
	for _, e := range c.Excludes {
		if e == TrashStagingDir {
			hasTrash = true
			break
		}
	}
	if !hasTrash {
		c.Excludes = append(c.Excludes, TrashStagingDir)
	}

	return nil
}

// ResolveRoot validates the scan root and converts it to an absolute,
// cleaned path. This is the only fatal input check in the program.
func (c *Config) ResolveRoot() (string, error) {
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errInvalidRoot, c.Root)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", errInvalidRoot, c.Root)
	}
	return abs, nil
}

// Policy returns the validated survivor policy.
func (c *Config) Policy() dedupe.SurvivorPolicy {
	p, err := dedupe.ParsePolicy(c.SurvivorPolicy)
	if err != nil {
		return dedupe.PolicyFirstSeen
	}
	return p
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
