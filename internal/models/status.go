package models

import "fmt"

// Status is the stable decision code shared with clients. The numeric values
// are part of the wire contract and must not change.
type Status int

const (
	StatusDenied            Status = 0
	StatusApproved          Status = 1
	StatusChallengeRequired Status = 2
	StatusSignupRequired    Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusDenied:
		return "denied"
	case StatusApproved:
		return "approved"
	case StatusChallengeRequired:
		return "challenge_required"
	case StatusSignupRequired:
		return "signup_required"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// IsRuleOutcome reports whether a rule may emit s as its success status.
func (s Status) IsRuleOutcome() bool {
	return s == StatusDenied || s == StatusApproved || s == StatusChallengeRequired
}

// Condition selects how a rule compares its fields against a transaction.
type Condition string

const (
	ConditionEqual    Condition = "EQUAL"
	ConditionGreater  Condition = "GREATER"
	ConditionLessThan Condition = "LESS_THAN"
	ConditionNot      Condition = "NOT"
	ConditionIs       Condition = "IS"
)

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionEqual, ConditionGreater, ConditionLessThan, ConditionNot, ConditionIs:
		return true
	}
	return false
}

// HomeLocation is the rule location sentinel resolved to the cardholder's
// home location at evaluation time.
const HomeLocation = "HOME_LOCATION"
