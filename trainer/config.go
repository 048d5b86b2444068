package trainer

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/neurlang/digits/learning"
)

// Config holds every setting of a training run.
type Config struct {
	BatchSize     int     `yaml:"batch_size"`
	TestBatchSize int     `yaml:"test_batch_size"`
	Epochs        int     `yaml:"epochs"`
	LR            float64 `yaml:"lr"`
	Gamma         float64 `yaml:"gamma"`
	Seed          int64   `yaml:"seed"`
	LogInterval   int     `yaml:"log_interval"`
	DryRun        bool    `yaml:"dry_run"`
	FullBatch     bool    `yaml:"fullbatch"`
	Threads       int     `yaml:"threads"`
	Hidden        []int   `yaml:"hidden"`

	NoCUDA    bool   `yaml:"no_cuda"`
	SaveModel bool   `yaml:"save_model"`
	ModelPath string `yaml:"model_path"`

	// ResultsPath is the csv rewritten after every epoch; empty derives it from FullBatch
	ResultsPath string `yaml:"results_path"`

	Data      string `yaml:"data"`
	Verify    bool   `yaml:"verify"`
	Whiten    bool   `yaml:"whiten"`
	Cache     bool   `yaml:"cache"`
	CacheSize int    `yaml:"cache_size"`
	MergeTest bool   `yaml:"merge_test"`
	Limit     int    `yaml:"limit"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig returns the settings of the digit experiment.
func DefaultConfig() Config {
	return Config{
		BatchSize:     64,
		TestBatchSize: 1000,
		Epochs:        14,
		LR:            1.0,
		Gamma:         0.7,
		Seed:          1,
		LogInterval:   10,
		Hidden:        []int{128, 128},
		ModelPath:     "mnist_mlp.json.lzw",
		Cache:         true,
	}
}

// LoadConfig overrides c with the fields present in the yaml file at path.
func LoadConfig(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not load config '%s'", path)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "could not unmarshal config '%s'", path)
	}
	return nil
}

// Validate rejects settings the loop cannot run with.
func (c Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return errors.Errorf("batch size %d", c.BatchSize)
	case c.TestBatchSize <= 0:
		return errors.Errorf("test batch size %d", c.TestBatchSize)
	case c.Epochs < 0:
		return errors.Errorf("epochs %d", c.Epochs)
	case c.LogInterval <= 0:
		return errors.Errorf("log interval %d", c.LogInterval)
	case c.LR <= 0:
		return errors.Errorf("learning rate %v", c.LR)
	}
	return nil
}

// Mode names the training regime in the results
func (c Config) Mode() string {
	if c.FullBatch {
		return "full"
	}
	return "stochastic"
}

// Results returns where the per-epoch accuracies are written.
func (c Config) Results() string {
	if c.ResultsPath != "" {
		return c.ResultsPath
	}
	if c.FullBatch {
		return "mnist_fulltrue.csv"
	}
	return "mnist_fullfalse.csv"
}

// HyperParameters derives the optimizer settings.
func (c Config) HyperParameters() learning.HyperParameters {
	h := learning.Defaults()
	h.LR = c.LR
	h.Gamma = c.Gamma
	return h
}
