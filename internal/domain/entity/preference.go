// Package entity contains the core business objects of the project.
package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealradar/internal/errors"
)

// SubscriberPreference is the read-only per-user filter the dispatcher
// evaluates against each cycle's diff. It is owned and validated elsewhere;
// the ingestion pipeline only reads it.
type SubscriberPreference struct {
	UserID             uuid.UUID   `json:"user_id"`              // The ID of the subscribing user.
	Email              string      `json:"email"`                // Address deal alerts are sent to.
	DisplayName        string      `json:"display_name"`         // Name used in the alert greeting; falls back to the email.
	Locality           string      `json:"locality"`             // Key of the locality the user wants deals from.
	SelectedStoreIDs   []uuid.UUID `json:"selected_store_ids"`   // Optional explicit store filter; empty means all stores.
	MinDiscountPercent int         `json:"min_discount_percent"` // Only deals at or above this discount qualify.
	FavoriteCategories []string    `json:"favorite_categories"`  // Optional category filter; empty means all categories.
	EmailNotifications bool        `json:"email_notifications"`  // Master switch for outbound email.
	NotifyNewDeals     bool        `json:"notify_new_deals"`     // Alert on newly appeared deals.
	NotifyPriceDrops   bool        `json:"notify_price_drops"`   // Alert on price reductions for existing deals.
	Window             TimeWindow  `json:"window"`               // Allowed time-of-day window for notifications.
}

// WantsStore reports whether the deal's store passes the explicit store filter.
func (p *SubscriberPreference) WantsStore(storeID uuid.UUID) bool {
	if len(p.SelectedStoreIDs) == 0 {
		return true
	}
	for _, id := range p.SelectedStoreIDs {
		if id == storeID {
			return true
		}
	}

	return false
}

// WantsCategory reports whether the deal's category passes the favorite-category filter.
func (p *SubscriberPreference) WantsCategory(category string) bool {
	if len(p.FavoriteCategories) == 0 {
		return true
	}
	for _, c := range p.FavoriteCategories {
		if strings.EqualFold(c, category) {
			return true
		}
	}

	return false
}

// TimeWindow is a time-of-day window in minutes since midnight.
// The window may wrap past midnight (Start > End), e.g. 22:00-05:00.
type TimeWindow struct {
	Start int `json:"start"` // Inclusive start, minutes since midnight.
	End   int `json:"end"`   // Inclusive end, minutes since midnight.
}

// Contains reports whether the clock time of t falls inside the window.
// A wrapped window (Start > End) allows times at or after Start OR at or
// before End.
func (w TimeWindow) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	if w.Start <= w.End {
		return w.Start <= minute && minute <= w.End
	}

	return minute >= w.Start || minute <= w.End
}

// ParseClock parses a "HH:MM" clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, errors.Errorf("invalid clock time %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, errors.Errorf("invalid hour in clock time %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, errors.Errorf("invalid minute in clock time %q", s)
	}

	return hour*60 + minute, nil
}
