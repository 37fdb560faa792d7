package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"banking-ledger/internal/domain"
)

// DepositRequest represents a deposit into an account
type DepositRequest struct {
	AccountID uuid.UUID       `json:"account_id"`
	OwnerID   string          `json:"owner_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// Validate validates the deposit request
func (r *DepositRequest) Validate() error {
	if r.AccountID == uuid.Nil {
		return &ValidationError{Field: "account_id", Message: "account_id is required"}
	}
	return validateAmount(r.Amount)
}

// WithdrawRequest represents a withdrawal from an account
type WithdrawRequest struct {
	AccountID uuid.UUID       `json:"account_id"`
	OwnerID   string          `json:"owner_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// Validate validates the withdraw request
func (r *WithdrawRequest) Validate() error {
	if r.AccountID == uuid.Nil {
		return &ValidationError{Field: "account_id", Message: "account_id is required"}
	}
	return validateAmount(r.Amount)
}

// TransferRequest represents a transfer between two accounts
type TransferRequest struct {
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	OwnerID       string          `json:"owner_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// Validate validates the transfer request
func (r *TransferRequest) Validate() error {
	if r.FromAccountID == uuid.Nil {
		return &ValidationError{Field: "from_account_id", Message: "from_account_id is required"}
	}
	if r.ToAccountID == uuid.Nil {
		return &ValidationError{Field: "to_account_id", Message: "to_account_id is required"}
	}
	if r.FromAccountID == r.ToAccountID {
		return &ValidationError{Field: "to_account_id", Message: "source and target accounts cannot be the same"}
	}
	return validateAmount(r.Amount)
}

// ApproveTransactionRequest represents a manager approving a blocked
// transaction.
type ApproveTransactionRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ApprovedBy    string    `json:"approved_by"`
}

// Validate validates the approval request
func (r *ApproveTransactionRequest) Validate() error {
	if r.TransactionID == uuid.Nil {
		return &ValidationError{Field: "transaction_id", Message: "transaction_id is required"}
	}
	if r.ApprovedBy == "" {
		return &ValidationError{Field: "approved_by", Message: "approved_by is required"}
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	return nil
}

// TransactionResponse represents the outcome of a transaction operation
type TransactionResponse struct {
	ID               uuid.UUID       `json:"id"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	FromAccountID    *uuid.UUID      `json:"from_account_id,omitempty"`
	ToAccountID      *uuid.UUID      `json:"to_account_id,omitempty"`
	RequiresApproval bool            `json:"requires_approval"`
	RiskScore        *int            `json:"risk_score,omitempty"`
	ApprovalNotes    string          `json:"approval_notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ExecutedAt       *time.Time      `json:"executed_at,omitempty"`
}

// NewTransactionResponse builds the API view of a transactional context.
func NewTransactionResponse(txCtx *domain.TransactionalContext) *TransactionResponse {
	tx := txCtx.Transaction
	return &TransactionResponse{
		ID:               tx.ID(),
		Type:             string(tx.Type()),
		Amount:           tx.Amount(),
		Status:           string(tx.Status()),
		FromAccountID:    tx.FromAccountID(),
		ToAccountID:      tx.ToAccountID(),
		RequiresApproval: txCtx.RequiresManagerApproval,
		RiskScore:        txCtx.RiskScore,
		ApprovalNotes:    txCtx.ApprovalNotes,
		CreatedAt:        tx.CreatedAt(),
		ExecutedAt:       tx.ExecutedAt(),
	}
}

// LedgerEntryResponse represents a single ledger entry in API responses
type LedgerEntryResponse struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	EntryType     string          `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewLedgerEntryResponses converts domain ledger entries to their API view.
func NewLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			TransactionID: e.TransactionID,
			AccountID:     e.AccountID,
			EntryType:     string(e.EntryType),
			Amount:        e.Amount,
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}
