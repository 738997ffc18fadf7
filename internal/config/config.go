// Package config loads client settings from defaults, an optional YAML file,
// STUDYSYNC_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/marcus/studysync/internal/poll"
	"github.com/marcus/studysync/internal/status"
)

const (
	envPrefix  = "STUDYSYNC"
	configName = "config"
	configType = "yaml"
	defaultDir = "~/.config/studysync"
)

// Config is the resolved client configuration.
type Config struct {
	Server    ServerConfig
	Status    status.Policy
	AISummary poll.Config
	Insights  InsightsConfig
	Cache     CacheConfig
	Log       LogConfig
	Monitor   MonitorConfig

	// File is the config file that was read, or the default location.
	File string

	v *viper.Viper
}

type ServerConfig struct {
	URL     string
	Timeout time.Duration
}

type InsightsConfig struct {
	Timezone string
	Location *time.Location
}

type CacheConfig struct {
	Enabled bool
	Path    string
}

type MonitorConfig struct {
	// Interval between background reloads; zero disables them.
	Interval time.Duration
	// Keys maps a monitor command to "context:key" entries.
	Keys map[string]string
}

type LogConfig struct {
	Level  string
	Format string
	// File is "-" for stderr.
	File string
}

// keysPrefix holds per-command monitor key overrides, which have no defaults.
const keysPrefix = "monitor.keys."

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"server": "server.url",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:5000")
	v.SetDefault("server.timeout", "30s")

	v.SetDefault("status.success_ttl", "5s")
	v.SetDefault("status.info_ttl", "5s")
	v.SetDefault("status.error_ttl", "0s")

	v.SetDefault("ai_summary.poll_interval", "1.5s")
	v.SetDefault("ai_summary.poll_max_interval", "1.5s")
	v.SetDefault("ai_summary.poll_timeout", "2m")

	v.SetDefault("insights.timezone", "America/New_York")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", defaultDir+"/cache.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", defaultDir+"/studysync.log")

	v.SetDefault("monitor.interval", "30s")
}

// Keys lists every known config key, sorted.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// DefaultFile is where the config file lives unless --config says otherwise.
func DefaultFile() string {
	p, err := homedir.Expand(filepath.Join(defaultDir, configName+"."+configType))
	if err != nil {
		return filepath.Join(".studysync", configName+"."+configType)
	}
	return p
}

// Load resolves the configuration. file may be empty for the default
// location; a missing file is not an error. flags, if set, override
// file and environment values for the flags listed in flagKeys.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file == "" {
		file = DefaultFile()
	} else if expanded, err := homedir.Expand(file); err == nil {
		file = expanded
	}
	v.SetConfigFile(file)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.File = file
	cfg.v = v
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			URL:     strings.TrimRight(v.GetString("server.url"), "/"),
			Timeout: v.GetDuration("server.timeout"),
		},
		Status: status.Policy{
			SuccessTTL: v.GetDuration("status.success_ttl"),
			InfoTTL:    v.GetDuration("status.info_ttl"),
			ErrorTTL:   v.GetDuration("status.error_ttl"),
		},
		AISummary: poll.Config{
			Interval:    v.GetDuration("ai_summary.poll_interval"),
			MaxInterval: v.GetDuration("ai_summary.poll_max_interval"),
			Timeout:     v.GetDuration("ai_summary.poll_timeout"),
		},
		Insights: InsightsConfig{Timezone: v.GetString("insights.timezone")},
		Cache:    CacheConfig{Enabled: v.GetBool("cache.enabled")},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Monitor: MonitorConfig{
			Interval: v.GetDuration("monitor.interval"),
			Keys:     v.GetStringMapString("monitor.keys"),
		},
	}
	if cfg.AISummary.MaxInterval > cfg.AISummary.Interval {
		cfg.AISummary.Multiplier = 1.5
	}

	if cfg.Server.URL == "" {
		return nil, errors.New("server.url must not be empty")
	}
	if err := cfg.Status.Validate(); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if cfg.AISummary.Interval <= 0 || cfg.AISummary.Timeout <= 0 {
		return nil, errors.New("ai_summary poll interval and timeout must be positive")
	}
	loc, err := time.LoadLocation(cfg.Insights.Timezone)
	if err != nil {
		return nil, fmt.Errorf("insights.timezone: %w", err)
	}
	cfg.Insights.Location = loc

	if cfg.Cache.Path, err = homedir.Expand(v.GetString("cache.path")); err != nil {
		return nil, fmt.Errorf("cache.path: %w", err)
	}
	cfg.Log.File = v.GetString("log.file")
	if cfg.Log.File != "-" {
		if cfg.Log.File, err = homedir.Expand(cfg.Log.File); err != nil {
			return nil, fmt.Errorf("log.file: %w", err)
		}
	}
	return cfg, nil
}

// Values returns every key with its effective value, for display.
func (c *Config) Values() map[string]any {
	out := make(map[string]any)
	for _, k := range Keys() {
		out[k] = c.v.Get(k)
	}
	return out
}

// Set stores key=value in the config file at path. Only the file's own
// values are rewritten; environment and flags are not persisted. The new
// file is written to a temp file and renamed into place.
func Set(path, key, value string) error {
	key = strings.ToLower(key)
	known := strings.HasPrefix(key, keysPrefix) && len(key) > len(keysPrefix)
	for _, k := range Keys() {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown config key %q", key)
	}

	if path == "" {
		path = DefaultFile()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.Set(key, value)

	// Validate the result with defaults applied before touching disk.
	check := viper.New()
	setDefaults(check)
	if err := check.MergeConfigMap(v.AllSettings()); err != nil {
		return err
	}
	if _, err := decode(check); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "config-*."+configType)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	tmp.Close()

	if err := v.WriteConfigAs(tmpName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmpName, path)
}
