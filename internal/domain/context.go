package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryType marks which side of a transaction an entry records.
type LedgerEntryType string

const (
	EntryDebit  LedgerEntryType = "DEBIT"
	EntryCredit LedgerEntryType = "CREDIT"
)

// LedgerEntry is one account's immutable debit or credit record for a
// completed transaction. Entries are append-only; they are produced only when
// a transaction reaches COMPLETED and never mutated afterwards.
type LedgerEntry struct {
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	EntryType     LedgerEntryType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}

// TransactionalContext is the unit of work binding one transaction to its
// participant accounts and approval metadata. The whole context (transaction,
// accounts, derived ledger entries) is persisted atomically in one storage
// transaction.
type TransactionalContext struct {
	Transaction *Transaction
	FromAccount Account
	ToAccount   Account
	IsNew       bool

	RequiresManagerApproval bool
	RiskScore               *int
	ApprovalNotes           string
	ApprovedBy              string
	ApprovedAt              *time.Time

	// Pre-execution balance snapshots used for ledger entries; set by the
	// caller immediately before Execute so entries are not re-derived from
	// the already-mutated account state.
	FromAccountBalanceBefore *decimal.Decimal
	ToAccountBalanceBefore   *decimal.Decimal
}

// NewTransactionalContext binds a transaction to its participant accounts.
// Either account may be nil depending on the transaction type.
func NewTransactionalContext(tx *Transaction, from, to Account) *TransactionalContext {
	return &TransactionalContext{Transaction: tx, FromAccount: from, ToAccount: to, IsNew: true}
}

// MarkForManagerApproval flags the context as blocked pending manual approval.
func (c *TransactionalContext) MarkForManagerApproval(reason string) {
	c.RequiresManagerApproval = true
	c.ApprovalNotes = reason
}

// ClearManagerApprovalRequirement lifts the approval requirement without
// recording an approver, used by auto-approval.
func (c *TransactionalContext) ClearManagerApprovalRequirement() {
	c.RequiresManagerApproval = false
}

// Approve records the approver and lifts the approval requirement. The caller
// must then re-run execution.
func (c *TransactionalContext) Approve(approvedBy string) {
	now := time.Now()
	c.RequiresManagerApproval = false
	c.ApprovedBy = approvedBy
	c.ApprovedAt = &now
}

// PendingApproval reports whether execution is blocked waiting for a manager.
func (c *TransactionalContext) PendingApproval() bool {
	return c.RequiresManagerApproval && c.ApprovedBy == ""
}

// SnapshotBalances captures the participant balances prior to execution.
func (c *TransactionalContext) SnapshotBalances() {
	if c.FromAccount != nil {
		b := c.FromAccount.Balance()
		c.FromAccountBalanceBefore = &b
	}
	if c.ToAccount != nil {
		b := c.ToAccount.Balance()
		c.ToAccountBalanceBefore = &b
	}
}

// LedgerEntries derives the append-only ledger rows for a completed
// transaction: a DEBIT for the source on withdraw/transfer and a CREDIT for
// the target on deposit/transfer. Balance-before values come from the
// pre-execution snapshots when present.
func (c *TransactionalContext) LedgerEntries() []LedgerEntry {
	tx := c.Transaction
	if tx == nil || tx.Status() != StatusCompleted || tx.ExecutedAt() == nil {
		return nil
	}

	var entries []LedgerEntry
	createdAt := *tx.ExecutedAt()

	if c.FromAccount != nil && (tx.Type() == TypeWithdraw || tx.Type() == TypeTransfer) {
		after := c.FromAccount.Balance()
		before := after.Add(tx.Amount())
		if c.FromAccountBalanceBefore != nil {
			before = *c.FromAccountBalanceBefore
		}
		entries = append(entries, LedgerEntry{
			TransactionID: tx.ID(),
			AccountID:     c.FromAccount.ID(),
			EntryType:     EntryDebit,
			Amount:        tx.Amount(),
			BalanceBefore: before,
			BalanceAfter:  after,
			CreatedAt:     createdAt,
		})
	}

	if c.ToAccount != nil && (tx.Type() == TypeDeposit || tx.Type() == TypeTransfer) {
		after := c.ToAccount.Balance()
		before := after.Sub(tx.Amount())
		if c.ToAccountBalanceBefore != nil {
			before = *c.ToAccountBalanceBefore
		}
		entries = append(entries, LedgerEntry{
			TransactionID: tx.ID(),
			AccountID:     c.ToAccount.ID(),
			EntryType:     EntryCredit,
			Amount:        tx.Amount(),
			BalanceBefore: before,
			BalanceAfter:  after,
			CreatedAt:     createdAt,
		})
	}

	return entries
}
