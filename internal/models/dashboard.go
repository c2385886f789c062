package models

import "time"

// MerchantStats is the reporting view returned for a merchant and window.
type MerchantStats struct {
	Window       string          `json:"window"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Totals       StatsTotals     `json:"totals"`
	Timeline     []TimelineDay   `json:"timeline"`
	TopLocations []LocationStat  `json:"top_locations"`
	Customers    []CustomerStats `json:"customers"`
}

// StatsTotals counts events by status within the window.
type StatsTotals struct {
	Total             int     `json:"total"`
	Approved          int     `json:"approved"`
	Denied            int     `json:"denied"`
	ChallengeRequired int     `json:"challenge_required"`
	SignupRequired    int     `json:"signup_required"`
	SuccessRate       float64 `json:"success_rate"`
}

// TimelineDay holds per-status counts for one calendar day.
type TimelineDay struct {
	Date              string `json:"date"`
	Approved          int    `json:"approved"`
	Denied            int    `json:"denied"`
	ChallengeRequired int    `json:"challenge_required"`
}

// LocationStat ranks a transaction location by event count.
type LocationStat struct {
	Location          string `json:"location"`
	Count             int    `json:"count"`
	ChallengeRequired int    `json:"challenge_required"`
	Denied            int    `json:"denied"`
}

// CustomerStats are the per-cardholder risk metrics. Average gaps are in
// seconds and nil when fewer than two matching events exist.
type CustomerStats struct {
	CCHash                      string   `json:"cchash"`
	Total                       int      `json:"total"`
	Approved                    int      `json:"approved"`
	Denied                      int      `json:"denied"`
	ChallengeRequired           int      `json:"challenge_required"`
	AvgSecondsBetweenChallenges *float64 `json:"avg_seconds_between_challenges"`
	AvgSecondsBetweenDenials    *float64 `json:"avg_seconds_between_denials"`
	LongestDeniedStreak         int      `json:"longest_denied_streak"`
	LongestApprovedStreak       int      `json:"longest_approved_streak"`
}
