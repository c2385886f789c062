package analytics

import (
	"sort"
	"time"

	"cardguard/internal/models"
)

const (
	topLocations = 5
	dateLayout   = "2006-01-02"
)

// Aggregate builds the reporting view from events ordered by timestamp then
// id. Days are bucketed in loc. Events before the window are ignored.
func Aggregate(events []models.TransactionEvent, window Window, now time.Time, loc *time.Location) models.MerchantStats {
	if loc == nil {
		loc = time.UTC
	}
	since := window.Since(now)
	inScope := make([]models.TransactionEvent, 0, len(events))
	for _, e := range events {
		if since.IsZero() || !e.Timestamp.Before(since) {
			inScope = append(inScope, e)
		}
	}

	return models.MerchantStats{
		Window:       string(window),
		GeneratedAt:  now,
		Totals:       totals(inScope),
		Timeline:     timeline(inScope, window, now, loc),
		TopLocations: locations(inScope),
		Customers:    customers(inScope),
	}
}

func totals(events []models.TransactionEvent) models.StatsTotals {
	var t models.StatsTotals
	for _, e := range events {
		t.Total++
		switch e.Status {
		case models.StatusApproved:
			t.Approved++
		case models.StatusDenied:
			t.Denied++
		case models.StatusChallengeRequired:
			t.ChallengeRequired++
		case models.StatusSignupRequired:
			t.SignupRequired++
		}
	}
	if t.Total > 0 {
		t.SuccessRate = float64(t.Approved) / float64(t.Total)
	}
	return t
}

// timeline has one entry per day from the start of the range through today,
// including days without events. The unbounded window only covers the
// trailing week.
func timeline(events []models.TransactionEvent, window Window, now time.Time, loc *time.Location) []models.TimelineDay {
	today := startOfDay(now.In(loc))
	var first time.Time
	if window == WindowAll {
		first = today.AddDate(0, 0, -(timelineDays - 1))
	} else {
		first = startOfDay(window.Since(now).In(loc))
	}

	var days []models.TimelineDay
	index := make(map[string]int)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(days)
		days = append(days, models.TimelineDay{Date: key})
	}

	for _, e := range events {
		i, ok := index[e.Timestamp.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		switch e.Status {
		case models.StatusApproved:
			days[i].Approved++
		case models.StatusDenied:
			days[i].Denied++
		case models.StatusChallengeRequired:
			days[i].ChallengeRequired++
		}
	}
	return days
}

// locations ranks by count; equal counts keep first-appearance order.
func locations(events []models.TransactionEvent) []models.LocationStat {
	stats := make([]models.LocationStat, 0)
	index := make(map[string]int)
	for _, e := range events {
		i, ok := index[e.Location]
		if !ok {
			i = len(stats)
			index[e.Location] = i
			stats = append(stats, models.LocationStat{Location: e.Location})
		}
		stats[i].Count++
		switch e.Status {
		case models.StatusChallengeRequired:
			stats[i].ChallengeRequired++
		case models.StatusDenied:
			stats[i].Denied++
		}
	}

	sort.SliceStable(stats, func(a, b int) bool { return stats[a].Count > stats[b].Count })
	if len(stats) > topLocations {
		stats = stats[:topLocations]
	}
	return stats
}

func customers(events []models.TransactionEvent) []models.CustomerStats {
	byHash := make(map[string][]models.TransactionEvent)
	for _, e := range events {
		if e.CardholderHash == nil {
			continue
		}
		byHash[*e.CardholderHash] = append(byHash[*e.CardholderHash], e)
	}

	result := make([]models.CustomerStats, 0, len(byHash))
	for hash, evs := range byHash {
		result = append(result, customer(hash, evs))
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].Total != result[b].Total {
			return result[a].Total > result[b].Total
		}
		return result[a].CCHash < result[b].CCHash
	})
	return result
}

// customer expects evs in timestamp order.
func customer(hash string, evs []models.TransactionEvent) models.CustomerStats {
	stats := models.CustomerStats{CCHash: hash, Total: len(evs)}

	var challenges, denials []time.Time
	var deniedRun, approvedRun int
	for _, e := range evs {
		switch e.Status {
		case models.StatusApproved:
			stats.Approved++
		case models.StatusDenied:
			stats.Denied++
			denials = append(denials, e.Timestamp)
		case models.StatusChallengeRequired:
			stats.ChallengeRequired++
			challenges = append(challenges, e.Timestamp)
		}

		deniedRun = extend(deniedRun, e.Status == models.StatusDenied)
		approvedRun = extend(approvedRun, e.Status == models.StatusApproved)
		stats.LongestDeniedStreak = max(stats.LongestDeniedStreak, deniedRun)
		stats.LongestApprovedStreak = max(stats.LongestApprovedStreak, approvedRun)
	}

	stats.AvgSecondsBetweenChallenges = averageGap(challenges)
	stats.AvgSecondsBetweenDenials = averageGap(denials)
	return stats
}

func extend(run int, ok bool) int {
	if ok {
		return run + 1
	}
	return 0
}

// averageGap is the mean spacing of consecutive times, nil below two.
func averageGap(times []time.Time) *float64 {
	if len(times) < 2 {
		return nil
	}
	avg := times[len(times)-1].Sub(times[0]).Seconds() / float64(len(times)-1)
	return &avg
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
