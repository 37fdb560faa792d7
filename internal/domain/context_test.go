package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLedgerEntries_PendingTransactionHasNone(t *testing.T) {
	ctx := newTransferContext(decimal.NewFromInt(100), decimal.NewFromInt(500), decimal.NewFromInt(50))
	assert.Nil(t, ctx.LedgerEntries())
}

func TestLedgerEntries_FailedTransactionHasNone(t *testing.T) {
	ctx := newTransferContext(decimal.NewFromInt(100), decimal.NewFromInt(500), decimal.NewFromInt(50))
	ctx.Transaction.Fail("declined")
	assert.Nil(t, ctx.LedgerEntries())
}

func TestLedgerEntries_Transfer(t *testing.T) {
	ctx := newTransferContext(decimal.NewFromInt(100), decimal.NewFromInt(500), decimal.NewFromInt(50))

	ctx.SnapshotBalances()
	assert.NoError(t, ctx.Transaction.Execute(ctx.FromAccount, ctx.ToAccount))

	entries := ctx.LedgerEntries()
	assert.Len(t, entries, 2)

	debit, credit := entries[0], entries[1]
	assert.Equal(t, EntryDebit, debit.EntryType)
	assert.Equal(t, ctx.FromAccount.ID(), debit.AccountID)
	assert.Equal(t, "500", debit.BalanceBefore.String())
	assert.Equal(t, "400", debit.BalanceAfter.String())

	assert.Equal(t, EntryCredit, credit.EntryType)
	assert.Equal(t, ctx.ToAccount.ID(), credit.AccountID)
	assert.Equal(t, "50", credit.BalanceBefore.String())
	assert.Equal(t, "150", credit.BalanceAfter.String())

	for _, e := range entries {
		assert.Equal(t, ctx.Transaction.ID(), e.TransactionID)
		assert.Equal(t, "100", e.Amount.String())
		assert.Equal(t, *ctx.Transaction.ExecutedAt(), e.CreatedAt)
	}
}

func TestLedgerEntries_Deposit(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(10))
	id := account.ID()
	tx := NewTransaction(TypeDeposit, decimal.NewFromInt(40), nil, &id)
	ctx := NewTransactionalContext(tx, nil, account)

	ctx.SnapshotBalances()
	assert.NoError(t, tx.Execute(nil, account))

	entries := ctx.LedgerEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, EntryCredit, entries[0].EntryType)
	assert.Equal(t, "10", entries[0].BalanceBefore.String())
	assert.Equal(t, "50", entries[0].BalanceAfter.String())
}

func TestLedgerEntries_Withdraw(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(90))
	id := account.ID()
	tx := NewTransaction(TypeWithdraw, decimal.NewFromInt(40), &id, nil)
	ctx := NewTransactionalContext(tx, account, nil)

	ctx.SnapshotBalances()
	assert.NoError(t, tx.Execute(account, nil))

	entries := ctx.LedgerEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, EntryDebit, entries[0].EntryType)
	assert.Equal(t, "90", entries[0].BalanceBefore.String())
	assert.Equal(t, "50", entries[0].BalanceAfter.String())
}

func TestLedgerEntries_BalanceBeforeFallback(t *testing.T) {
	// Without explicit snapshots the before-balance is derived from the
	// post-execution balance.
	account := restoredAccount(StatusActive, decimal.NewFromInt(10))
	id := account.ID()
	tx := NewTransaction(TypeDeposit, decimal.NewFromInt(40), nil, &id)
	ctx := NewTransactionalContext(tx, nil, account)

	assert.NoError(t, tx.Execute(nil, account))

	entries := ctx.LedgerEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "10", entries[0].BalanceBefore.String())
}

func TestTransactionalContext_ApprovalFlow(t *testing.T) {
	ctx := newTransferContext(decimal.NewFromInt(100), decimal.NewFromInt(500), decimal.NewFromInt(50))

	assert.False(t, ctx.PendingApproval())

	ctx.MarkForManagerApproval("risk threshold reached")
	assert.True(t, ctx.RequiresManagerApproval)
	assert.True(t, ctx.PendingApproval())
	assert.Equal(t, "risk threshold reached", ctx.ApprovalNotes)

	ctx.ClearManagerApprovalRequirement()
	assert.False(t, ctx.RequiresManagerApproval)
	assert.Empty(t, ctx.ApprovedBy)
}
