package clock

import (
	"testing"
	"time"
)

func TestExchange_TradingDayStart(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name    string
		session time.Duration
		in      time.Time
		want    time.Time
	}{
		{
			name:    "midnight session",
			session: 0,
			in:      time.Date(2024, 1, 15, 14, 30, 0, 0, ny),
			want:    time.Date(2024, 1, 15, 0, 0, 0, 0, ny),
		},
		{
			name:    "evening session after open",
			session: 18 * time.Hour,
			in:      time.Date(2024, 1, 15, 19, 0, 0, 0, ny),
			want:    time.Date(2024, 1, 15, 18, 0, 0, 0, ny),
		},
		{
			name:    "evening session before open",
			session: 18 * time.Hour,
			in:      time.Date(2024, 1, 15, 9, 30, 0, 0, ny),
			want:    time.Date(2024, 1, 14, 18, 0, 0, 0, ny),
		},
		{
			name:    "exactly at open",
			session: 9*time.Hour + 30*time.Minute,
			in:      time.Date(2024, 1, 15, 9, 30, 0, 0, ny),
			want:    time.Date(2024, 1, 15, 9, 30, 0, 0, ny),
		},
		{
			name:    "utc input converted",
			session: 0,
			in:      time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC), // 22:00 on the 14th in New York
			want:    time.Date(2024, 1, 14, 0, 0, 0, 0, ny),
		},
		{
			name:    "first of month rolls back",
			session: 18 * time.Hour,
			in:      time.Date(2024, 3, 1, 8, 0, 0, 0, ny),
			want:    time.Date(2024, 2, 29, 18, 0, 0, 0, ny),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewExchange("America/New_York", tt.session)
			if err != nil {
				t.Fatalf("NewExchange: %v", err)
			}
			got := c.TradingDayStart(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("TradingDayStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewExchange_Errors(t *testing.T) {
	if _, err := NewExchange("Not/AZone", 0); err == nil {
		t.Error("expected error for unknown zone")
	}
	if _, err := NewExchange("UTC", 24*time.Hour); err == nil {
		t.Error("expected error for session start of 24h")
	}
	if _, err := NewExchange("UTC", -time.Minute); err == nil {
		t.Error("expected error for negative session start")
	}
}

func TestExchange_Now(t *testing.T) {
	c, err := NewExchange("UTC", 0)
	if err != nil {
		t.Fatalf("NewExchange: %v", err)
	}
	fixed := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	if got := c.Now(); !got.Equal(fixed) {
		t.Errorf("Now() = %v, want %v", got, fixed)
	}
	if got := c.Now().Location(); got != c.Location {
		t.Errorf("Now().Location() = %v, want %v", got, c.Location)
	}
}
