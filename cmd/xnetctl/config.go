package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/validation"
)

// Config holds default flag values loaded from a YAML file (-config),
// so repeated invocations against the same object-storage bucket or
// Leiden/dimension parameter set don't need to repeat every flag.
// Grounded on the teacher's cmd/graphdb-upgrade cluster.yaml loader.
type Config struct {
	Blobstore struct {
		Region          string `yaml:"region"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		SessionToken    string `yaml:"session_token"`
	} `yaml:"blobstore"`

	Leiden struct {
		Resolution float64 `yaml:"resolution"`
		MaxLevels  int     `yaml:"max_levels"`
		MaxPasses  int     `yaml:"max_passes"`
		Budget     int     `yaml:"budget"`
	} `yaml:"leiden"`

	Dimension struct {
		Method   string `yaml:"method"`
		Order    int    `yaml:"order"`
		MaxLevel int    `yaml:"max_level"`
	} `yaml:"dimension"`

	IO struct {
		// Mmap opens local .bxnet containers through a memory-mapped
		// file (bxnet.ReadFileMmap) instead of os.Open; the parser
		// still copies the mapped bytes into memory. It has no effect
		// on ZXNet/SXNet inputs.
		Mmap bool `yaml:"mmap"`
	} `yaml:"io"`
}

// Validate checks field ranges consistent with the flag defaults in
// runLeiden/runDimension, so a bad config file fails fast instead of
// producing a confusing downstream error from pkg/analysis.
func (c *Config) Validate() error {
	v := validation.NewConfigValidator("xnetctl.Config")
	v.When(c.Leiden.Resolution != 0, func(cv *validation.ConfigValidator) {
		cv.PositiveFloat("leiden.resolution", c.Leiden.Resolution)
	})
	v.When(c.Leiden.MaxLevels != 0, func(cv *validation.ConfigValidator) {
		cv.Positive("leiden.max_levels", c.Leiden.MaxLevels)
	})
	v.When(c.Leiden.MaxPasses != 0, func(cv *validation.ConfigValidator) {
		cv.Positive("leiden.max_passes", c.Leiden.MaxPasses)
	})
	v.When(c.Dimension.Method != "", func(cv *validation.ConfigValidator) {
		cv.OneOf("dimension.method", c.Dimension.Method, []string{"forward", "backward", "central", "least_squares"})
	})
	v.When(c.Dimension.Order != 0, func(cv *validation.ConfigValidator) {
		cv.OrderRange("dimension.order", c.Dimension.Method, c.Dimension.Order)
	})
	return v.Validate()
}

// loadConfig reads and validates a YAML config file. A missing path
// returns a zero Config rather than an error, since -config is optional.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.IOError("loadConfig", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ferrors.InvalidArgument("loadConfig", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
