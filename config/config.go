// Package config loads optional YAML settings for the compiler
// driver. None of spec.md's core semantics are configurable - this
// only tunes ambient behavior (diagnostic verbosity, the instruction
// trace) that sits outside the language's defined results.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the driver's tunable settings. Default() is the
// baseline: no debug output, no trace, 8-byte stack slots. The driver
// passes StackSlotBytes to the compiler as the width of every local's
// stack slot; a zero value is treated as 8.
type Config struct {
	Debug          bool `yaml:"debug"`
	Trace          bool `yaml:"trace"`
	StackSlotBytes int  `yaml:"stack_slot_bytes"`
}

// Default returns the baseline configuration used when no file is
// present.
func Default() Config {
	return Config{StackSlotBytes: 8}
}

// Load reads path as YAML into a Config seeded with Default(). A
// missing file is not an error - it just means defaults apply; any
// other read or parse failure is returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.StackSlotBytes == 0 {
		cfg.StackSlotBytes = 8
	}
	return cfg, nil
}
