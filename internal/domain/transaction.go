package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes the three supported operations.
type TransactionType string

const (
	TypeDeposit  TransactionType = "DEPOSIT"
	TypeWithdraw TransactionType = "WITHDRAW"
	TypeTransfer TransactionType = "TRANSFER"
)

// TransactionStatus is the execution state of a transaction. A transaction
// is created PENDING and transitions exactly once to COMPLETED or FAILED.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusReversed  TransactionStatus = "REVERSED"
)

// Transaction is the aggregate representing a single financial operation. It
// orchestrates execution against one or two live accounts and records
// completed/failed events for the caller to publish.
type Transaction struct {
	id            uuid.UUID
	fromAccountID *uuid.UUID
	toAccountID   *uuid.UUID
	txType        TransactionType
	amount        decimal.Decimal
	status        TransactionStatus
	createdAt     time.Time
	executedAt    *time.Time
	version       int64
	events        []Event
}

// NewTransaction creates a PENDING transaction of the given type.
func NewTransaction(txType TransactionType, amount decimal.Decimal, fromAccountID, toAccountID *uuid.UUID) *Transaction {
	return &Transaction{
		id:            uuid.New(),
		fromAccountID: fromAccountID,
		toAccountID:   toAccountID,
		txType:        txType,
		amount:        amount,
		status:        StatusPending,
		createdAt:     time.Now(),
	}
}

func (t *Transaction) ID() uuid.UUID             { return t.id }
func (t *Transaction) FromAccountID() *uuid.UUID { return t.fromAccountID }
func (t *Transaction) ToAccountID() *uuid.UUID   { return t.toAccountID }
func (t *Transaction) Type() TransactionType     { return t.txType }
func (t *Transaction) Amount() decimal.Decimal   { return t.amount }
func (t *Transaction) Status() TransactionStatus { return t.status }
func (t *Transaction) CreatedAt() time.Time      { return t.createdAt }
func (t *Transaction) ExecutedAt() *time.Time    { return t.executedAt }
func (t *Transaction) Version() int64            { return t.version }

// Events drains and returns the events recorded since the last call.
func (t *Transaction) Events() []Event {
	evs := t.events
	t.events = nil
	return evs
}

func (t *Transaction) record(ev Event) { t.events = append(t.events, ev) }

// validateState checks that the transaction may be executed.
func (t *Transaction) validateState() error {
	if t.status != StatusPending {
		return &InvalidTransactionStateError{Current: t.status, Expected: StatusPending}
	}
	if t.amount.Sign() <= 0 {
		return &InvalidTransactionAmountError{Amount: t.amount}
	}
	return nil
}

// Execute runs the transaction against the given accounts. On success the
// status becomes COMPLETED and a completed event is recorded; on any failure
// the status becomes FAILED, a failed event is recorded, and the causing
// error is returned unchanged (only the compensating-transfer path
// synthesizes a new ExecutionError).
func (t *Transaction) Execute(fromAccount, toAccount Account) error {
	if err := t.run(fromAccount, toAccount); err != nil {
		t.status = StatusFailed
		t.record(TransactionFailedEvent{
			TransactionID: t.id,
			Type:          t.txType,
			Amount:        t.amount,
			FromAccountID: t.fromAccountID,
			ToAccountID:   t.toAccountID,
			Reason:        err.Error(),
		})
		return err
	}

	now := time.Now()
	t.status = StatusCompleted
	t.executedAt = &now
	t.record(TransactionCompletedEvent{
		TransactionID: t.id,
		Type:          t.txType,
		Amount:        t.amount,
		FromAccountID: t.fromAccountID,
		ToAccountID:   t.toAccountID,
		ExecutedAt:    now,
	})
	return nil
}

// Fail marks the transaction FAILED outside of Execute, e.g. when the payment
// gateway declines a charge before execution is attempted.
func (t *Transaction) Fail(reason string) {
	t.status = StatusFailed
	t.record(TransactionFailedEvent{
		TransactionID: t.id,
		Type:          t.txType,
		Amount:        t.amount,
		FromAccountID: t.fromAccountID,
		ToAccountID:   t.toAccountID,
		Reason:        reason,
	})
}

func (t *Transaction) run(fromAccount, toAccount Account) error {
	if err := t.validateState(); err != nil {
		return err
	}
	switch t.txType {
	case TypeDeposit:
		if toAccount == nil {
			return &AccountRequiredError{Role: "target"}
		}
		return toAccount.Deposit(t.amount)
	case TypeWithdraw:
		if fromAccount == nil {
			return &AccountRequiredError{Role: "source"}
		}
		return fromAccount.Withdraw(t.amount)
	case TypeTransfer:
		return t.runTransfer(fromAccount, toAccount)
	default:
		return &ExecutionError{TransactionID: t.id, Reason: fmt.Sprintf("unknown transaction type: %s", t.txType)}
	}
}

// runTransfer withdraws from the source, then deposits to the target. If the
// deposit fails after the withdrawal succeeded, the amount is deposited back
// into the source (compensation). The three outcomes are distinguishable by
// the returned error:
//   - withdrawal failed: the original error, no compensation attempted;
//   - deposit failed, compensation succeeded: ExecutionError reporting the
//     deposit failure and that funds were returned;
//   - deposit failed, compensation failed: ExecutionError with
//     ManualInterventionRequired set, the source balance may be inconsistent.
func (t *Transaction) runTransfer(fromAccount, toAccount Account) error {
	if fromAccount == nil {
		return &AccountRequiredError{Role: "source"}
	}
	if toAccount == nil {
		return &AccountRequiredError{Role: "target"}
	}
	if fromAccount.ID() == toAccount.ID() {
		return &SameAccountTransferError{AccountID: fromAccount.ID()}
	}

	if err := fromAccount.Withdraw(t.amount); err != nil {
		return err
	}

	depositErr := toAccount.Deposit(t.amount)
	if depositErr == nil {
		return nil
	}

	if compErr := fromAccount.Deposit(t.amount); compErr != nil {
		return &ExecutionError{
			TransactionID: t.id,
			Reason: fmt.Sprintf(
				"transfer failed after withdrawal: %v; compensation (rollback) also failed: %v; manual intervention required, source account %s may have an incorrect balance",
				depositErr, compErr, fromAccount.ID()),
			ManualInterventionRequired: true,
		}
	}
	return &ExecutionError{
		TransactionID: t.id,
		Reason: fmt.Sprintf(
			"deposit to target account %s failed: %v; amount has been compensated (rolled back) to source account %s",
			toAccount.ID(), depositErr, fromAccount.ID()),
	}
}
