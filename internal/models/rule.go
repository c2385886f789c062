package models

import (
	"fmt"
	"time"
)

// Rule is a merchant-configured predicate plus the status it emits on match.
// Nil fields mean "don't care".
type Rule struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	MerchantAPIKey string    `gorm:"column:merchant_api_key;index;not null" json:"-"`
	Priority       int       `gorm:"not null;default:0" json:"priority"`
	Amount         *float64  `json:"amount,omitempty"`
	Location       *string   `json:"location,omitempty"`
	TimeStart      *string   `gorm:"column:time_start" json:"time_start,omitempty"`
	TimeEnd        *string   `gorm:"column:time_end" json:"time_end,omitempty"`
	Condition      Condition `gorm:"type:varchar(16);not null" json:"condition"`
	SuccessStatus  Status    `gorm:"column:success_status;not null" json:"success_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// TimeOfDay returns t's offset from midnight in t's own location.
func TimeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}
