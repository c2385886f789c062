// Package notification delivers issued challenge codes over the channel a
// cardholder chose.
package notification

import (
	"context"
	"fmt"

	"cardguard/internal/logging"
	"cardguard/internal/models"

	"go.uber.org/zap"
)

// Sender delivers a code for one factor.
type Sender interface {
	Send(ctx context.Context, cardholder *models.Cardholder, factor, code string) error
}

// Router dispatches to the sender registered for a factor, or to the
// fallback when none is.
type Router struct {
	senders  map[string]Sender
	fallback Sender
}

func NewRouter(fallback Sender) *Router {
	return &Router{
		senders:  make(map[string]Sender),
		fallback: fallback,
	}
}

// Register adds a sender for a specific factor.
func (r *Router) Register(factor string, sender Sender) {
	r.senders[factor] = sender
}

func (r *Router) Send(ctx context.Context, cardholder *models.Cardholder, factor, code string) error {
	sender, ok := r.senders[factor]
	if !ok {
		sender = r.fallback
	}
	if sender == nil {
		return fmt.Errorf("no sender for factor %q", factor)
	}
	return sender.Send(ctx, cardholder, factor, code)
}

// LogSender records the delivery instead of sending it. The code itself is
// never logged.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, cardholder *models.Cardholder, factor, _ string) error {
	s.logger.Info("challenge code dispatched",
		logging.MaskedKey("cchash", cardholder.CCHash),
		zap.String("factor", factor),
		logging.MaskedKey("destination", destination(cardholder, factor)),
	)
	return nil
}

func destination(c *models.Cardholder, factor string) string {
	switch factor {
	case models.FactorEmail:
		if c.Email != nil {
			return *c.Email
		}
	case models.FactorPhone:
		if c.Phone != nil {
			return *c.Phone
		}
	}
	return factor
}
