package engine

import (
	"time"

	"github.com/mstoykov/envconfig"
	"gopkg.in/yaml.v3"
)

// Options holds the engine-wide tunables spec.md §6 names (MaxCallDepth,
// ExecutionTimeout, array density threshold), loaded the way the teacher
// loads its runner config: environment variables via
// github.com/mstoykov/envconfig, with an optional YAML overlay for
// host-supplied config files.
type Options struct {
	MaxCallDepth        int           `yaml:"maxCallDepth" envconfig:"ECMA_MAX_CALL_DEPTH"`
	ExecutionTimeout    time.Duration `yaml:"executionTimeout" envconfig:"ECMA_EXECUTION_TIMEOUT"`
	ArrayDenseThreshold int           `yaml:"arrayDenseThreshold" envconfig:"ECMA_ARRAY_DENSE_THRESHOLD"`
}

// DefaultOptions mirrors the defaults spec.md §4.6 (promise call depth
// guard) and §5 (no deadline unless the host sets one) describe.
func DefaultOptions() Options {
	return Options{
		MaxCallDepth:        2000,
		ExecutionTimeout:    0,
		ArrayDenseThreshold: 0,
	}
}

// LoadOptions starts from DefaultOptions, applies a YAML overlay (when
// yamlDoc is non-empty) the way k6's config-file layer does, then lets
// envconfig's environment variables take final precedence — config file
// first, environment override last, mirroring the teacher's own
// config-file-plus-env-override layering (SPEC_FULL.md §1).
func LoadOptions(envPrefix string, yamlDoc []byte) (Options, error) {
	opts := DefaultOptions()
	if len(yamlDoc) > 0 {
		if err := yaml.Unmarshal(yamlDoc, &opts); err != nil {
			return Options{}, err
		}
	}
	if err := envconfig.Process(envPrefix, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
