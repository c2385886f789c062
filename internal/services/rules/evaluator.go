package rules

import (
	"time"

	"cardguard/internal/models"
)

// DefaultStatus is returned when no rule matches. Ambiguity demands a second
// factor rather than a silent approval or denial.
const DefaultStatus = models.StatusChallengeRequired

// Transaction holds the attributes a rule is tested against. Timestamp must
// already be in the zone whose time of day rule windows refer to.
type Transaction struct {
	Amount       float64
	Location     string
	Timestamp    time.Time
	HomeLocation *string
}

// Evaluate returns the success status of the first rule, in the given order,
// whose applicable predicates all hold.
func Evaluate(rules []models.Rule, tx Transaction) models.Status {
	for i := range rules {
		if Matches(&rules[i], tx) {
			return rules[i].SuccessStatus
		}
	}
	return DefaultStatus
}

// Matches tests a single rule. Unset rule fields do not constrain the match.
func Matches(rule *models.Rule, tx Transaction) bool {
	return matchAmount(rule, tx.Amount) &&
		matchLocation(rule, tx.Location, tx.HomeLocation) &&
		matchWindow(rule, tx.Timestamp)
}

func matchAmount(rule *models.Rule, amount float64) bool {
	if rule.Amount == nil {
		return true
	}
	threshold := *rule.Amount
	switch rule.Condition {
	case models.ConditionEqual, models.ConditionIs:
		return amount == threshold
	case models.ConditionGreater:
		return amount > threshold
	case models.ConditionLessThan:
		return amount < threshold
	case models.ConditionNot:
		return amount != threshold
	}
	return false
}

// matchLocation only applies to IS and NOT; the amount-style conditions leave
// location untested.
func matchLocation(rule *models.Rule, location string, home *string) bool {
	if rule.Location == nil {
		return true
	}
	if rule.Condition != models.ConditionIs && rule.Condition != models.ConditionNot {
		return true
	}

	target := rule.Location
	if *target == models.HomeLocation {
		target = home
	}
	equal := target != nil && *target == location

	if rule.Condition == models.ConditionIs {
		return equal
	}
	return !equal
}

// matchWindow is inclusive at both ends. Windows wrapping midnight, and
// unparseable bounds, never match.
func matchWindow(rule *models.Rule, ts time.Time) bool {
	if rule.TimeStart == nil || rule.TimeEnd == nil {
		return true
	}
	start, err := models.ParseTimeOfDay(*rule.TimeStart)
	if err != nil {
		return false
	}
	end, err := models.ParseTimeOfDay(*rule.TimeEnd)
	if err != nil {
		return false
	}
	tod := models.TimeOfDay(ts)
	return start <= tod && tod <= end
}
