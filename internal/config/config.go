package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"slotnik/internal/clock"
	"slotnik/internal/model"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Enabled       bool   `yaml:"enabled"`
		Address       string `yaml:"address"`
		Password      string `yaml:"password"`
		DB            int    `yaml:"db"`
		GridTTLSecond int    `yaml:"grid_ttl_seconds"`
	} `yaml:"redis"`

	Calendar struct {
		GranularityMinutes int    `yaml:"granularity_minutes"`
		DayStart           string `yaml:"day_start"`
		DayEnd             string `yaml:"day_end"`
	} `yaml:"calendar"`

	Sweep struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"sweep"`

	Notify struct {
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"notify"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsPath string `yaml:"credentials_path"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
	} `yaml:"sheets"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/slotnik.db"
	}
	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	if _, err := cfg.FallbackOpen(); err != nil {
		return nil, fmt.Errorf("calendar day range: %w", err)
	}

	return &cfg, nil
}

// Granularity returns the grid tick, defaulting to 15 minutes.
func (c *Config) Granularity() int {
	if c.Calendar.GranularityMinutes <= 0 {
		return 15
	}
	return c.Calendar.GranularityMinutes
}

// FallbackOpen returns the displayed day range used when no resource is
// open, defaulting to 08:00-22:00.
func (c *Config) FallbackOpen() (model.Shift, error) {
	start, end := c.Calendar.DayStart, c.Calendar.DayEnd
	if start == "" {
		start = "08:00"
	}
	if end == "" {
		end = "22:00"
	}

	s, err := clock.Parse(start)
	if err != nil {
		return model.Shift{}, err
	}
	e, err := clock.Parse(end)
	if err != nil {
		return model.Shift{}, err
	}
	if e <= s {
		return model.Shift{}, fmt.Errorf("day_end %s before day_start %s", end, start)
	}
	return model.Shift{Start: s, End: e}, nil
}

// SweepInterval returns the lifecycle sweep cadence, defaulting to hourly.
func (c *Config) SweepInterval() time.Duration {
	if c.Sweep.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Sweep.IntervalMinutes) * time.Minute
}

// GridTTL returns how long rendered grids stay cached.
func (c *Config) GridTTL() time.Duration {
	if c.Redis.GridTTLSecond <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.GridTTLSecond) * time.Second
}
