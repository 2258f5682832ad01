// Package config loads converter settings: which interpreters run the legacy
// and generated scripts, where the emulation shim and legacy runtime live,
// and where conversion runs are staged.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Staging     StagingConfig     `mapstructure:"staging"`
	Harness     HarnessConfig     `mapstructure:"harness"`
}

type InterpreterConfig struct {
	// Legacy runs the unmodified motorhome 1.0 definition scripts.
	Legacy string `mapstructure:"legacy"`
	// Current runs generated new-API scripts.
	Current string `mapstructure:"current"`
	// ShimPath is prepended to a child's module search path so legacy
	// scripts resolve the recording shim instead of the real library.
	ShimPath string `mapstructure:"shim_path"`
	// LegacyRuntimePath locates the motorhome 1.0 library used by the
	// old-generation baseline path.
	LegacyRuntimePath string `mapstructure:"legacy_runtime_path"`
}

type StagingConfig struct {
	WorkRoot string `mapstructure:"work_root"`
}

type HarnessConfig struct {
	// Timeout bounds each child script execution. Zero disables the bound,
	// matching the legacy behavior of waiting indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`
}

func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("interpreter.legacy", "/usr/bin/python2.7")
	v.SetDefault("interpreter.current", "/usr/bin/python3")
	v.SetDefault("interpreter.shim_path", "shim")
	v.SetDefault("interpreter.legacy_runtime_path", "old_motorhome")
	v.SetDefault("staging.work_root", "/tmp")
	v.SetDefault("harness.timeout", "0s")

	v.AutomaticEnv()
	v.SetEnvPrefix("HOMING")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
