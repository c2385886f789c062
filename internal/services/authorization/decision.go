package authorization

import "cardguard/internal/models"

// Decision is the outcome of one transaction. The concrete type is one of
// Approved, ChallengeRequired, Denied or SignupRequired.
type Decision interface {
	Status() models.Status
	Message() string
	// TransactionID is the reference of the recorded event.
	TransactionID() string
	decision()
}

type Approved struct {
	Reference string
}

type ChallengeRequired struct {
	Reference string
	// Factors lists the cardholder's enrolled factors. It may be empty.
	Factors []string
}

type Denied struct {
	Reference string
	Reason    string
}

type SignupRequired struct {
	Reference string
	Email     string
}

func (Approved) Status() models.Status          { return models.StatusApproved }
func (ChallengeRequired) Status() models.Status { return models.StatusChallengeRequired }
func (Denied) Status() models.Status            { return models.StatusDenied }
func (SignupRequired) Status() models.Status    { return models.StatusSignupRequired }

func (Approved) Message() string          { return "transaction approved" }
func (ChallengeRequired) Message() string { return "auth required" }
func (SignupRequired) Message() string    { return "signup required" }

func (d Denied) Message() string {
	if d.Reason == "" {
		return "transaction denied"
	}
	return d.Reason
}

func (d Approved) TransactionID() string          { return d.Reference }
func (d ChallengeRequired) TransactionID() string { return d.Reference }
func (d Denied) TransactionID() string            { return d.Reference }
func (d SignupRequired) TransactionID() string    { return d.Reference }

func (Approved) decision()          {}
func (ChallengeRequired) decision() {}
func (Denied) decision()            {}
func (SignupRequired) decision()    {}
