package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
	"github.com/dd0wney/xnetgraph/pkg/validation"
)

// viewConfig holds defaults loaded from -config, mirroring xnetctl's
// YAML config loader (teacher's cmd/graphdb-upgrade cluster.yaml idiom)
// so a fixed data directory doesn't need to be typed on every launch.
type viewConfig struct {
	DefaultGraph string `yaml:"default_graph"`
	Palette      struct {
		Encoding string `yaml:"encoding"` // "u8x4" or "u32x4"
	} `yaml:"palette"`
}

func (c *viewConfig) colorEncoding() graph.ColorEncoding {
	if c.Palette.Encoding == "u32x4" {
		return graph.ColorU32x4
	}
	return graph.ColorU8x4
}

func (c *viewConfig) validate() error {
	v := validation.NewConfigValidator("xnetview.config")
	v.When(c.Palette.Encoding != "", func(cv *validation.ConfigValidator) {
		cv.OneOf("palette.encoding", c.Palette.Encoding, []string{"u8x4", "u32x4"})
	})
	return v.Validate()
}

func loadViewConfig(path string) (*viewConfig, error) {
	c := &viewConfig{}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.IOError("loadViewConfig", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, ferrors.InvalidArgument("loadViewConfig", err.Error())
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
