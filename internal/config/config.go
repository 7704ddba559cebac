package config

import "time"

// Config is the root configuration for a levelfeed instance.
type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Style    StyleConfig    `yaml:"style"`
	Chart    ChartConfig    `yaml:"chart"`
	Host     HostConfig     `yaml:"host"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// FeedConfig describes where and how often to download levels.
type FeedConfig struct {
	URL          string        `yaml:"url"`
	Interval     time.Duration `yaml:"interval"`      // minimum time between fetch attempts
	TimeoutTicks int           `yaml:"timeout_ticks"` // ticks before an outstanding request is abandoned
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	UserAgent    string        `yaml:"user_agent"`
}

// StyleConfig holds line appearance.
type StyleConfig struct {
	ColorOverride string `yaml:"color_override"` // "#RRGGBB"; "#000000" uses feed colors
	FontSize      int    `yaml:"font_size"`
	LineWidth     int    `yaml:"line_width"`
	LineStyle     string `yaml:"line_style"` // solid, dashed, dotted
	BaseOffset    int    `yaml:"base_offset"`
}

// ChartConfig anchors lines to the exchange's trading day.
type ChartConfig struct {
	Timezone     string        `yaml:"timezone"`
	SessionStart time.Duration `yaml:"session_start"` // offset from local midnight
	ImageWidth   int           `yaml:"image_width"`
	ImageHeight  int           `yaml:"image_height"`
}

// HostConfig drives the in-process host.
type HostConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// ServerConfig holds the chart hub HTTP server settings.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DatabaseConfig holds the optional snapshot store.
type DatabaseConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Postgres      DBConfig      `yaml:"postgres"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
