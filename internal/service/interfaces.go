package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"banking-ledger/internal/domain"
)

// AccountRepository is the account persistence surface the services depend on.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error)
	SaveAccount(ctx context.Context, account domain.Account) error
}

// TransactionRepository persists transactional contexts and serves ledger
// queries.
type TransactionRepository interface {
	LoadContext(ctx context.Context, transactionID uuid.UUID) (*domain.TransactionalContext, error)
	SaveContext(ctx context.Context, txCtx *domain.TransactionalContext) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListLedgerEntries(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
}

// PaymentGateway moves money between the ledger and the outside world.
// Charge pulls external funds in for a deposit, Payout pushes withdrawn funds
// out, Refund reverses a charge whose deposit could not be completed.
type PaymentGateway interface {
	Charge(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error
	Payout(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error
	Refund(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error
}

// EventSink receives domain events drained from executed transactions.
type EventSink interface {
	Publish(evs ...domain.Event)
}
