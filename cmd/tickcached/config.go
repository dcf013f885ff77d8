package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of --config, following the
// calvinalkan-agent-task pattern of a resolved config struct loaded
// from YAML and overridable by flags (internal/cli/print_config.go
// prints exactly this kind of resolved-config-plus-sources view).
type fileConfig struct {
	MaxEntries    int    `yaml:"max_entries"`
	TickInterval  string `yaml:"tick_interval"`
	WheelSize     uint32 `yaml:"wheel_size"`
	BudgetPerTick int    `yaml:"budget_per_tick"`
	Passive       bool   `yaml:"passive_expiration"`
	MetricsAddr   string `yaml:"metrics_addr"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		MaxEntries:    100_000,
		TickInterval:  "50ms",
		WheelSize:     4096,
		BudgetPerTick: 200_000,
		Passive:       true,
		MetricsAddr:   ":9090",
	}
}

// resolvedConfig is fileConfig after flag overrides and string parsing,
// ready to feed tickcache.Option construction.
type resolvedConfig struct {
	maxEntries    int
	tickInterval  time.Duration
	wheelSize     uint32
	budgetPerTick int
	passive       bool
	metricsAddr   string
	configPath    string
}

func loadConfig(args []string) (resolvedConfig, error) {
	fc := defaultFileConfig()

	fs := flag.NewFlagSet("tickcached", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	maxEntries := fs.Int("max-entries", fc.MaxEntries, "maximum live entries")
	tickInterval := fs.Duration("tick-interval", 50*time.Millisecond, "wall-clock duration of one tick")
	wheelSize := fs.Uint32("wheel-size", fc.WheelSize, "timer wheel bucket count, power of two")
	budgetPerTick := fs.Int("budget-per-tick", fc.BudgetPerTick, "work budget per advance call")
	passive := fs.Bool("passive-expiration", fc.Passive, "drive expiration from a background ticker instead of on every call")
	metricsAddr := fs.String("metrics-addr", fc.MetricsAddr, "listen address for /metrics")

	if err := fs.Parse(args); err != nil {
		return resolvedConfig{}, err
	}

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return resolvedConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return resolvedConfig{}, fmt.Errorf("parse config: %w", err)
		}
		ti, err := time.ParseDuration(fc.TickInterval)
		if err != nil {
			return resolvedConfig{}, fmt.Errorf("config tick_interval: %w", err)
		}
		rc := resolvedConfig{
			maxEntries:    fc.MaxEntries,
			tickInterval:  ti,
			wheelSize:     fc.WheelSize,
			budgetPerTick: fc.BudgetPerTick,
			passive:       fc.Passive,
			metricsAddr:   fc.MetricsAddr,
			configPath:    *configPath,
		}
		// Explicit flags still win over the file, mirroring pflag's own
		// "last set value wins" precedence.
		applyFlagOverrides(fs, &rc, maxEntries, tickInterval, wheelSize, budgetPerTick, passive, metricsAddr)
		return rc, nil
	}

	return resolvedConfig{
		maxEntries:    *maxEntries,
		tickInterval:  *tickInterval,
		wheelSize:     *wheelSize,
		budgetPerTick: *budgetPerTick,
		passive:       *passive,
		metricsAddr:   *metricsAddr,
	}, nil
}

func applyFlagOverrides(
	fs *flag.FlagSet,
	rc *resolvedConfig,
	maxEntries *int,
	tickInterval *time.Duration,
	wheelSize *uint32,
	budgetPerTick *int,
	passive *bool,
	metricsAddr *string,
) {
	if fs.Changed("max-entries") {
		rc.maxEntries = *maxEntries
	}
	if fs.Changed("tick-interval") {
		rc.tickInterval = *tickInterval
	}
	if fs.Changed("wheel-size") {
		rc.wheelSize = *wheelSize
	}
	if fs.Changed("budget-per-tick") {
		rc.budgetPerTick = *budgetPerTick
	}
	if fs.Changed("passive-expiration") {
		rc.passive = *passive
	}
	if fs.Changed("metrics-addr") {
		rc.metricsAddr = *metricsAddr
	}
}
