package gosched

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

// Config holds the ambient, host-supplied tuning knobs for a Scheduler.
// Values are in whatever unit their field name carries; all *Us fields are
// microseconds.
type Config struct {
	QueueCapacity    int `toml:"queue_capacity" yaml:"queueCapacity" env:"GOSCHED_QUEUE_CAPACITY"`
	MaxMessageSize   int `toml:"max_message_size" yaml:"maxMessageSize" env:"GOSCHED_MAX_MESSAGE_SIZE"`
	StatsIntervalUs  int `toml:"stats_interval_us" yaml:"statsIntervalUs" env:"GOSCHED_STATS_INTERVAL_US"`
	DefaultPeriodUs  int `toml:"default_period_us" yaml:"defaultPeriodUs" env:"GOSCHED_DEFAULT_PERIOD_US"`
	MaxTasks         int `toml:"max_tasks" yaml:"maxTasks" env:"GOSCHED_MAX_TASKS"`
	MaxSubscriptions int `toml:"max_subscriptions" yaml:"maxSubscriptions" env:"GOSCHED_MAX_SUBSCRIPTIONS"`
}

// DefaultConfig applies a 100ms default task period and picks
// conservative values for everything else.
func DefaultConfig() Config {
	return Config{
		QueueCapacity:    64,
		MaxMessageSize:   256,
		StatsIntervalUs:  1_000_000,
		DefaultPeriodUs:  int(DefaultPeriodUs),
		MaxTasks:         0, // unlimited
		MaxSubscriptions: 0, // unlimited
	}
}

// LoadTOML reads a Config from a TOML file, starting from DefaultConfig
// and overwriting only the fields present in the file.
func LoadTOML(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("gosched: decode toml config %q: %w", path, err)
	}
	return cfg, nil
}

// LoadYAML reads a Config from a YAML file, starting from DefaultConfig
// and overwriting only the fields present in the file.
func LoadYAML(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("gosched: read yaml config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("gosched: decode yaml config %q: %w", path, err)
	}
	return cfg, nil
}

// envOverrides lists the env var name for each overridable field, in the
// same order the fields are declared in Config. Kept as a literal table
// (rather than reflected from struct tags) to keep ApplyEnvOverrides'
// failure mode per-field and easy to unit test.
var envOverrides = []struct {
	name string
	set  func(*Config, int)
}{
	{"GOSCHED_QUEUE_CAPACITY", func(c *Config, v int) { c.QueueCapacity = v }},
	{"GOSCHED_MAX_MESSAGE_SIZE", func(c *Config, v int) { c.MaxMessageSize = v }},
	{"GOSCHED_STATS_INTERVAL_US", func(c *Config, v int) { c.StatsIntervalUs = v }},
	{"GOSCHED_DEFAULT_PERIOD_US", func(c *Config, v int) { c.DefaultPeriodUs = v }},
	{"GOSCHED_MAX_TASKS", func(c *Config, v int) { c.MaxTasks = v }},
	{"GOSCHED_MAX_SUBSCRIPTIONS", func(c *Config, v int) { c.MaxSubscriptions = v }},
}

// ApplyEnvOverrides overlays any of the GOSCHED_* environment variables
// (read through getenv, so tests don't need to touch the real process
// environment) onto cfg, coercing the string values with golobby/cast.
func (c *Config) ApplyEnvOverrides(getenv func(string) string) error {
	for _, ov := range envOverrides {
		raw := getenv(ov.name)
		if raw == "" {
			continue
		}
		v, err := cast.ToInt(raw)
		if err != nil {
			return fmt.Errorf("gosched: env override %s=%q: %w", ov.name, raw, err)
		}
		ov.set(c, v)
	}
	return nil
}
