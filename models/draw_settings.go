package models

import (
	"fmt"
	"time"
)

// DisplayMode controls how a drawn prize is labelled
type DisplayMode string

const (
	DisplayModeRank  DisplayMode = "rank"
	DisplayModePrize DisplayMode = "prize"
	DisplayModeBoth  DisplayMode = "both"
)

// ParseDisplayMode converts a raw value into a DisplayMode
func ParseDisplayMode(raw string) (DisplayMode, error) {
	switch DisplayMode(raw) {
	case DisplayModeRank, DisplayModePrize, DisplayModeBoth:
		return DisplayMode(raw), nil
	}
	return "", fmt.Errorf("unknown display mode %q", raw)
}

// Label renders a rank/name pair according to the display mode.
// Unknown modes fall back to showing both.
func (m DisplayMode) Label(rank int, name string) string {
	switch m {
	case DisplayModeRank:
		return fmt.Sprintf("#%d", rank)
	case DisplayModePrize:
		return name
	default:
		return fmt.Sprintf("#%d - %s", rank, name)
	}
}

// DrawSettings holds the operator-controlled draw settings (single row)
type DrawSettings struct {
	Closed      bool        `db:"closed"`
	DisplayMode DisplayMode `db:"display_mode"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

// DrawStatus describes whether drawing is currently possible
type DrawStatus struct {
	Prizes         []*Prize
	TotalRemaining int
	Closed         bool
	DisplayMode    DisplayMode
	LowStock       bool // total remaining at or below the warning threshold
}

// Available reports whether a draw can be started
func (s *DrawStatus) Available() bool {
	return !s.Closed && s.TotalRemaining > 0
}
