package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_ExecuteDeposit(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(100))
	id := account.ID()
	tx := NewTransaction(TypeDeposit, decimal.NewFromInt(50), nil, &id)

	assert.NoError(t, tx.Execute(nil, account))

	assert.Equal(t, StatusCompleted, tx.Status())
	assert.NotNil(t, tx.ExecutedAt())
	assert.Equal(t, "150", account.Balance().String())

	events := tx.Events()
	assert.Len(t, events, 1)
	completed, ok := events[0].(TransactionCompletedEvent)
	assert.True(t, ok)
	assert.Equal(t, tx.ID(), completed.TransactionID)

	// Events are drained on read.
	assert.Empty(t, tx.Events())
}

func TestTransaction_ExecuteWithdraw(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(100))
	id := account.ID()
	tx := NewTransaction(TypeWithdraw, decimal.NewFromInt(40), &id, nil)

	assert.NoError(t, tx.Execute(account, nil))
	assert.Equal(t, StatusCompleted, tx.Status())
	assert.Equal(t, "60", account.Balance().String())
}

func TestTransaction_ExecuteFailureMarksFailed(t *testing.T) {
	account := restoredAccount(StatusSuspended, decimal.NewFromInt(100))
	id := account.ID()
	tx := NewTransaction(TypeWithdraw, decimal.NewFromInt(40), &id, nil)

	err := tx.Execute(account, nil)

	var notActive *AccountNotActiveError
	assert.ErrorAs(t, err, &notActive, "causing error must pass through unchanged")
	assert.Equal(t, StatusFailed, tx.Status())
	assert.Nil(t, tx.ExecutedAt())

	events := tx.Events()
	assert.Len(t, events, 1)
	failed, ok := events[0].(TransactionFailedEvent)
	assert.True(t, ok)
	assert.Contains(t, failed.Reason, "only ACTIVE accounts")
}

func TestTransaction_ValidateState(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(100))
	id := account.ID()

	t.Run("non-positive amount", func(t *testing.T) {
		tx := NewTransaction(TypeDeposit, decimal.Zero, nil, &id)
		err := tx.Execute(nil, account)
		var amountErr *InvalidTransactionAmountError
		assert.ErrorAs(t, err, &amountErr)
	})

	t.Run("already completed", func(t *testing.T) {
		tx := NewTransaction(TypeDeposit, decimal.NewFromInt(10), nil, &id)
		assert.NoError(t, tx.Execute(nil, account))

		err := tx.Execute(nil, account)
		var stateErr *InvalidTransactionStateError
		assert.ErrorAs(t, err, &stateErr)
	})

	t.Run("missing accounts", func(t *testing.T) {
		tx := NewTransaction(TypeDeposit, decimal.NewFromInt(10), nil, &id)
		err := tx.Execute(nil, nil)
		var required *AccountRequiredError
		assert.ErrorAs(t, err, &required)
	})
}

func TestTransaction_TransferSuccess(t *testing.T) {
	from := restoredAccount(StatusActive, decimal.NewFromInt(100))
	to := restoredAccount(StatusActive, decimal.NewFromInt(10))
	fromID, toID := from.ID(), to.ID()
	tx := NewTransaction(TypeTransfer, decimal.NewFromInt(30), &fromID, &toID)

	assert.NoError(t, tx.Execute(from, to))
	assert.Equal(t, "70", from.Balance().String())
	assert.Equal(t, "40", to.Balance().String())
}

func TestTransaction_TransferSameAccount(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(100))
	id := account.ID()
	tx := NewTransaction(TypeTransfer, decimal.NewFromInt(30), &id, &id)

	err := tx.Execute(account, account)
	var sameErr *SameAccountTransferError
	assert.ErrorAs(t, err, &sameErr)
	assert.Equal(t, "100", account.Balance().String())
}

func TestTransaction_TransferWithdrawalFails(t *testing.T) {
	// Source is suspended: the withdrawal error propagates unchanged and no
	// compensation is attempted.
	from := restoredAccount(StatusSuspended, decimal.NewFromInt(100))
	to := restoredAccount(StatusActive, decimal.NewFromInt(10))
	fromID, toID := from.ID(), to.ID()
	tx := NewTransaction(TypeTransfer, decimal.NewFromInt(30), &fromID, &toID)

	err := tx.Execute(from, to)

	var notActive *AccountNotActiveError
	assert.ErrorAs(t, err, &notActive)
	assert.Equal(t, StatusFailed, tx.Status())
	assert.Equal(t, "100", from.Balance().String())
	assert.Equal(t, "10", to.Balance().String())
}

func TestTransaction_TransferDepositFailsCompensated(t *testing.T) {
	// Target is a paid-off loan account: the deposit fails after the source
	// withdrawal succeeded, and the amount is returned to the source.
	from := restoredAccount(StatusActive, decimal.NewFromInt(500))
	to := newLoanAccount(t, decimal.Zero, "0.24", "100")
	fromID, toID := from.ID(), to.ID()
	tx := NewTransaction(TypeTransfer, decimal.NewFromInt(200), &fromID, &toID)

	err := tx.Execute(from, to)

	var execErr *ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.False(t, execErr.ManualInterventionRequired)
	assert.Contains(t, execErr.Reason, "compensated")
	assert.Equal(t, StatusFailed, tx.Status())
	assert.Equal(t, "500", from.Balance().String(), "source must be made whole")
	assert.True(t, to.Balance().IsZero())
}

func TestTransaction_TransferCompensationFails(t *testing.T) {
	// Source allows withdrawals but rejects deposits, so the compensation
	// after the failed target deposit cannot be applied either.
	inner := restoredAccount(StatusActive, decimal.NewFromInt(500))
	inner.depositStrategy = NoDepositStrategy{}
	to := newLoanAccount(t, decimal.Zero, "0.24", "100")
	fromID, toID := inner.ID(), to.ID()
	tx := NewTransaction(TypeTransfer, decimal.NewFromInt(200), &fromID, &toID)

	err := tx.Execute(inner, to)

	var execErr *ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.True(t, execErr.ManualInterventionRequired)
	assert.Contains(t, execErr.Reason, "manual intervention")
	assert.Equal(t, "300", inner.Balance().String(), "withdrawn amount is stuck")
}

func TestTransaction_Fail(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(100))
	id := account.ID()
	tx := NewTransaction(TypeDeposit, decimal.NewFromInt(50), nil, &id)

	tx.Fail("gateway declined")

	assert.Equal(t, StatusFailed, tx.Status())
	events := tx.Events()
	assert.Len(t, events, 1)
	failed, ok := events[0].(TransactionFailedEvent)
	assert.True(t, ok)
	assert.Equal(t, "gateway declined", failed.Reason)
}

func TestTransaction_SnapshotRoundtrip(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(100))
	id := account.ID()
	tx := NewTransaction(TypeDeposit, decimal.NewFromInt(50), nil, &id)
	assert.NoError(t, tx.Execute(nil, account))

	restored := RestoreTransaction(tx.Snapshot())

	assert.Equal(t, tx.ID(), restored.ID())
	assert.Equal(t, StatusCompleted, restored.Status())
	assert.Equal(t, tx.Amount().String(), restored.Amount().String())
	assert.NotNil(t, restored.ExecutedAt())
}
