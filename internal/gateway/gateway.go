package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LogGateway is an in-process payment gateway that approves every operation
// and records it in the log. It stands in for a real payment provider.
type LogGateway struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Charge pulls external funds in for a deposit.
func (g *LogGateway) Charge(_ context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	g.log("charge", accountID, amount)
	return nil
}

// Payout pushes withdrawn funds out.
func (g *LogGateway) Payout(_ context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	g.log("payout", accountID, amount)
	return nil
}

// Refund reverses a charge whose deposit could not be completed.
func (g *LogGateway) Refund(_ context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	g.log("refund", accountID, amount)
	return nil
}

func (g *LogGateway) log(op string, accountID uuid.UUID, amount decimal.Decimal) {
	g.logger.WithFields(logrus.Fields{
		"operation":  op,
		"account_id": accountID,
		"amount":     amount,
	}).Debug("payment gateway operation")
}
