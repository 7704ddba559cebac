package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/levelfeed/internal/model"
	"github.com/rickgao/levelfeed/internal/parser"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if c.Feed.Interval <= 0 {
		return errors.New("feed.interval must be > 0")
	}
	if c.Feed.TimeoutTicks < 1 {
		return errors.New("feed.timeout_ticks must be >= 1")
	}

	if _, err := c.Style.Color(); err != nil {
		return fmt.Errorf("style.color_override: %w", err)
	}
	if _, err := model.ParseLineStyle(c.Style.LineStyle); err != nil {
		return fmt.Errorf("style.line_style: %w", err)
	}
	if c.Style.FontSize < 1 {
		return errors.New("style.font_size must be >= 1")
	}
	if c.Style.LineWidth < 1 {
		return errors.New("style.line_width must be >= 1")
	}
	if c.Style.BaseOffset < 0 {
		return errors.New("style.base_offset must be >= 0")
	}

	if _, err := time.LoadLocation(c.Chart.Timezone); err != nil {
		return fmt.Errorf("chart.timezone: %w", err)
	}
	if c.Chart.SessionStart < 0 || c.Chart.SessionStart >= 24*time.Hour {
		return fmt.Errorf("chart.session_start must be in [0, 24h), got %v", c.Chart.SessionStart)
	}

	if c.Host.TickInterval <= 0 {
		return errors.New("host.tick_interval must be > 0")
	}

	if c.Database.Enabled {
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
		if c.Database.BatchSize < 1 {
			return errors.New("database.batch_size must be >= 1")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

// Color decodes ColorOverride. Black means "use feed color".
func (s StyleConfig) Color() (model.RGB, error) {
	return parser.ParseColor(s.ColorOverride)
}
