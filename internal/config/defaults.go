package config

import (
	"time"

	"github.com/rickgao/levelfeed/internal/study"
)

// Default values for optional configuration fields.
const (
	DefaultFeedURL       = study.PlaceholderURL
	DefaultFeedInterval  = 5 * time.Minute
	DefaultTimeoutTicks  = 500
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultUserAgent     = "levelfeed/1.0"
	DefaultColorOverride = "#000000"
	DefaultFontSize      = 14
	DefaultLineWidth     = 1
	DefaultLineStyle     = "solid"
	DefaultBaseOffset    = 2020
	DefaultTimezone      = "America/New_York"
	DefaultImageWidth    = 1200
	DefaultImageHeight   = 600
	DefaultTickInterval  = 100 * time.Millisecond
	DefaultServerAddr    = ":8080"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 4
	DefaultMinConns      = 1
	DefaultBatchSize     = 500
	DefaultFlushInterval = 5 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

func (c *Config) applyDefaults() {
	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.Interval == 0 {
		c.Feed.Interval = DefaultFeedInterval
	}
	if c.Feed.TimeoutTicks == 0 {
		c.Feed.TimeoutTicks = DefaultTimeoutTicks
	}
	if c.Feed.HTTPTimeout == 0 {
		c.Feed.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = DefaultUserAgent
	}

	// Style defaults
	if c.Style.ColorOverride == "" {
		c.Style.ColorOverride = DefaultColorOverride
	}
	if c.Style.FontSize == 0 {
		c.Style.FontSize = DefaultFontSize
	}
	if c.Style.LineWidth == 0 {
		c.Style.LineWidth = DefaultLineWidth
	}
	if c.Style.LineStyle == "" {
		c.Style.LineStyle = DefaultLineStyle
	}
	if c.Style.BaseOffset == 0 {
		c.Style.BaseOffset = DefaultBaseOffset
	}

	// Chart defaults
	if c.Chart.Timezone == "" {
		c.Chart.Timezone = DefaultTimezone
	}
	if c.Chart.ImageWidth == 0 {
		c.Chart.ImageWidth = DefaultImageWidth
	}
	if c.Chart.ImageHeight == 0 {
		c.Chart.ImageHeight = DefaultImageHeight
	}

	// Host defaults
	if c.Host.TickInterval == 0 {
		c.Host.TickInterval = DefaultTickInterval
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)
	if c.Database.BatchSize == 0 {
		c.Database.BatchSize = DefaultBatchSize
	}
	if c.Database.FlushInterval == 0 {
		c.Database.FlushInterval = DefaultFlushInterval
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
