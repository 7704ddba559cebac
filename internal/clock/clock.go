// Package clock provides the exchange calendar used to anchor level lines.
package clock

import (
	"fmt"
	"time"
)

// Exchange maps instants onto trading days that begin at SessionStart local time.
type Exchange struct {
	Location     *time.Location
	SessionStart time.Duration // offset from local midnight, in [0, 24h)

	now func() time.Time
}

// NewExchange creates an Exchange clock for the named IANA zone.
func NewExchange(zone string, sessionStart time.Duration) (*Exchange, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", zone, err)
	}
	if sessionStart < 0 || sessionStart >= 24*time.Hour {
		return nil, fmt.Errorf("session start %v outside [0, 24h)", sessionStart)
	}
	return &Exchange{
		Location:     loc,
		SessionStart: sessionStart,
		now:          time.Now,
	}, nil
}

// Now returns the current time in the exchange location.
func (e *Exchange) Now() time.Time {
	if e.now == nil {
		return time.Now().In(e.Location)
	}
	return e.now().In(e.Location)
}

// TradingDayStart returns the latest session open at or before t.
func (e *Exchange) TradingDayStart(t time.Time) time.Time {
	local := t.In(e.Location)
	hour := int(e.SessionStart / time.Hour)
	minute := int((e.SessionStart % time.Hour) / time.Minute)

	start := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, e.Location)
	if local.Before(start) {
		start = time.Date(local.Year(), local.Month(), local.Day()-1, hour, minute, 0, 0, e.Location)
	}
	return start
}
