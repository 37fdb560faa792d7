package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a domain event recorded by the Transaction aggregate during
// execution. Events are drained by the caller and published synchronously;
// the core does not depend on any delivery mechanism.
type Event interface {
	EventName() string
}

// TransactionCompletedEvent is recorded when a transaction reaches COMPLETED.
type TransactionCompletedEvent struct {
	TransactionID uuid.UUID
	Type          TransactionType
	Amount        decimal.Decimal
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	ExecutedAt    time.Time
}

func (TransactionCompletedEvent) EventName() string { return "transaction.completed" }

// TransactionFailedEvent is recorded when a transaction reaches FAILED,
// carrying a text reason derived from the causing error.
type TransactionFailedEvent struct {
	TransactionID uuid.UUID
	Type          TransactionType
	Amount        decimal.Decimal
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Reason        string
}

func (TransactionFailedEvent) EventName() string { return "transaction.failed" }
