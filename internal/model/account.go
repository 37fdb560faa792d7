package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"banking-ledger/internal/domain"
)

// CreateAccountRequest represents the request to open an individual account
type CreateAccountRequest struct {
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name"`
	Type      string `json:"type"` // STANDARD, LOAN or FEE_ACCOUNT

	MaxWithdrawal    *decimal.Decimal `json:"max_withdrawal,omitempty"`
	MaxDeposit       *decimal.Decimal `json:"max_deposit,omitempty"`
	LoanInterestRate *decimal.Decimal `json:"loan_interest_rate,omitempty"`
	LoanMinPayment   *decimal.Decimal `json:"loan_min_payment,omitempty"`

	// Optional feature decorators.
	OverdraftLimit      *decimal.Decimal `json:"overdraft_limit,omitempty"`
	Insured             bool             `json:"insured,omitempty"`
	InsuranceFeePercent *decimal.Decimal `json:"insurance_fee_percent,omitempty"`
	Premium             bool             `json:"premium,omitempty"`
	DepositBonusPercent *decimal.Decimal `json:"deposit_bonus_percent,omitempty"`
	WithdrawFeePercent  *decimal.Decimal `json:"withdraw_fee_percent,omitempty"`
}

// Validate validates the create account request
func (r *CreateAccountRequest) Validate() error {
	if r.OwnerID == "" {
		return &ValidationError{Field: "owner_id", Message: "owner_id is required"}
	}
	switch domain.AccountType(r.Type) {
	case domain.TypeStandard, domain.TypeLoan, domain.TypeFeeAccount:
	case "":
		return &ValidationError{Field: "type", Message: "account type is required"}
	default:
		return &ValidationError{Field: "type", Message: "unknown account type: " + r.Type}
	}
	if r.MaxWithdrawal != nil && r.MaxWithdrawal.Sign() <= 0 {
		return &ValidationError{Field: "max_withdrawal", Message: "max_withdrawal must be positive"}
	}
	if r.MaxDeposit != nil && r.MaxDeposit.Sign() <= 0 {
		return &ValidationError{Field: "max_deposit", Message: "max_deposit must be positive"}
	}
	if r.OverdraftLimit != nil && r.OverdraftLimit.Sign() < 0 {
		return &ValidationError{Field: "overdraft_limit", Message: "overdraft_limit cannot be negative"}
	}
	return nil
}

// CreateGroupAccountRequest represents the request to open a group account
// over existing individual accounts.
type CreateGroupAccountRequest struct {
	OwnerID   string      `json:"owner_id"`
	GroupName string      `json:"group_name"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// Validate validates the create group account request
func (r *CreateGroupAccountRequest) Validate() error {
	if r.OwnerID == "" {
		return &ValidationError{Field: "owner_id", Message: "owner_id is required"}
	}
	if r.GroupName == "" {
		return &ValidationError{Field: "group_name", Message: "group_name is required"}
	}
	if len(r.MemberIDs) == 0 {
		return &ValidationError{Field: "member_ids", Message: "at least one member account is required"}
	}
	seen := make(map[uuid.UUID]struct{}, len(r.MemberIDs))
	for _, id := range r.MemberIDs {
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: "member_ids", Message: "duplicate member account: " + id.String()}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	IsGroup   bool            `json:"is_group,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewAccountResponse builds the API view of an account.
func NewAccountResponse(a domain.Account) *AccountResponse {
	_, isGroup := domain.UnwrapAccount(a).(*domain.GroupAccount)
	return &AccountResponse{
		ID:        a.ID(),
		OwnerID:   a.OwnerID(),
		Type:      string(a.Type()),
		Status:    string(a.Status()),
		IsGroup:   isGroup,
		Balance:   a.Balance(),
		Metadata:  a.Metadata().Clone(),
		CreatedAt: a.CreatedAt(),
		UpdatedAt: a.UpdatedAt(),
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}
