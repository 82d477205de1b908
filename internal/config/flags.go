package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagGrid    = flag.String("grid", "", "Occupancy grid file")
	flagStep    = flag.Float64("step", 0, "Grid step size in world units")
	flagPerTick = flag.Int("per-tick", 0, "Grid samples per tick")
	flagLogFile = flag.String("log-file", "", "Also log to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagGrid != "" {
		cfg.Grid.Path = *flagGrid
	}
	if *flagStep > 0 {
		cfg.Grid.StepSize = float32(*flagStep)
	}
	if *flagPerTick > 0 {
		cfg.Grid.SamplesPerTick = *flagPerTick
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
