package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Server.URL != "http://localhost:5000" || cfg.Server.Timeout != 30*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Status.SuccessTTL != 5*time.Second || cfg.Status.InfoTTL != 5*time.Second || cfg.Status.ErrorTTL != 0 {
		t.Errorf("status = %+v", cfg.Status)
	}
	if cfg.AISummary.Interval != 1500*time.Millisecond || cfg.AISummary.Timeout != 2*time.Minute {
		t.Errorf("ai summary = %+v", cfg.AISummary)
	}
	if cfg.AISummary.Multiplier != 0 {
		t.Errorf("fixed interval expected, multiplier = %v", cfg.AISummary.Multiplier)
	}
	if cfg.Insights.Location.String() != "America/New_York" {
		t.Errorf("location = %v", cfg.Insights.Location)
	}
	if !cfg.Cache.Enabled || strings.HasPrefix(cfg.Cache.Path, "~") {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("server:\n  url: http://file:1\n  timeout: 10s\nlog:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(file, nil)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.URL != "http://file:1" || cfg.Server.Timeout != 10*time.Second || cfg.Log.Level != "debug" {
			t.Errorf("cfg = %+v %+v", cfg.Server, cfg.Log)
		}
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("STUDYSYNC_SERVER_URL", "http://env:2/")
		cfg, err := Load(file, nil)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.URL != "http://env:2" {
			t.Errorf("url = %q", cfg.Server.URL)
		}
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("STUDYSYNC_SERVER_URL", "http://env:2")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("server", "", "")
		if err := flags.Parse([]string{"--server", "http://flag:3"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(file, flags)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.URL != "http://flag:3" {
			t.Errorf("url = %q", cfg.Server.URL)
		}
	})
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad timezone", "insights:\n  timezone: Mars/Olympus\n"},
		{"negative ttl", "status:\n  info_ttl: -1s\n"},
		{"zero poll timeout", "ai_summary:\n  poll_timeout: 0s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(file, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(file, nil); err == nil {
				t.Error("Load() accepted invalid config")
			}
		})
	}
}

func TestSet(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := Set(file, "server.url", "http://set:4"); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	if err := Set(file, "log.level", "warn"); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	cfg, err := Load(file, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "http://set:4" || cfg.Log.Level != "warn" {
		t.Errorf("cfg = %+v %+v", cfg.Server, cfg.Log)
	}

	if err := Set(file, "no.such.key", "x"); err == nil {
		t.Error("Set() accepted unknown key")
	}
	if err := Set(file, "insights.timezone", "Nowhere/Land"); err == nil {
		t.Error("Set() accepted invalid timezone")
	}
	entries, _ := os.ReadDir(filepath.Dir(file))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	want := []string{"server.url", "cache.enabled", "insights.timezone", "ai_summary.poll_timeout"}
	for _, w := range want {
		found := false
		for _, k := range keys {
			if k == w {
				found = true
			}
		}
		if !found {
			t.Errorf("Keys() missing %s", w)
		}
	}
}

func TestMonitorKeys(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("monitor:\n  interval: 1m\n  keys:\n    sync: \"ctrl+s, S\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Set(file, "monitor.keys.quit", "global:Q"); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	if err := Set(file, "monitor.keys.", "x"); err == nil {
		t.Error("Set() accepted an empty command name")
	}

	cfg, err := Load(file, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Monitor.Interval != time.Minute {
		t.Errorf("interval = %v", cfg.Monitor.Interval)
	}
	if cfg.Monitor.Keys["sync"] != "ctrl+s, S" || cfg.Monitor.Keys["quit"] != "global:Q" {
		t.Errorf("keys = %v", cfg.Monitor.Keys)
	}
}
