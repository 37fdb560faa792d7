package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountNotActiveError is returned when an operation is attempted on an
// account that is suspended or frozen.
type AccountNotActiveError struct {
	AccountID uuid.UUID
	Status    AccountStatus
	Operation string
}

func (e *AccountNotActiveError) Error() string {
	return fmt.Sprintf("cannot %s on account %s: account is %s, only ACTIVE accounts can perform %s operations",
		e.Operation, e.AccountID, e.Status, e.Operation)
}

// AccountClosedError is returned when any operation is attempted on a closed account.
type AccountClosedError struct {
	AccountID uuid.UUID
	Operation string
}

func (e *AccountClosedError) Error() string {
	return fmt.Sprintf("cannot %s on account %s: account is CLOSED and does not allow any operations",
		e.Operation, e.AccountID)
}

// InvalidStateTransitionError is returned for disallowed lifecycle transitions.
type InvalidStateTransitionError struct {
	AccountID uuid.UUID
	From      AccountStatus
	To        AccountStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition account %s from %s to %s", e.AccountID, e.From, e.To)
}

// WithdrawalNotAllowedError is returned by strategies that deny withdrawals.
type WithdrawalNotAllowedError struct {
	AccountID   uuid.UUID
	AccountType AccountType
	Reason      string
}

func (e *WithdrawalNotAllowedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("withdrawal not allowed on %s account %s: %s", e.AccountType, e.AccountID, e.Reason)
	}
	return fmt.Sprintf("withdrawal not allowed on %s account %s", e.AccountType, e.AccountID)
}

// DepositNotAllowedError is returned by strategies that deny deposits.
type DepositNotAllowedError struct {
	AccountID   uuid.UUID
	AccountType AccountType
	Reason      string
}

func (e *DepositNotAllowedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("deposit not allowed on %s account %s: %s", e.AccountType, e.AccountID, e.Reason)
	}
	return fmt.Sprintf("deposit not allowed on %s account %s", e.AccountType, e.AccountID)
}

// InvalidAmountError is returned for zero or negative amounts at the account level.
type InvalidAmountError struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Reason    string
}

func (e *InvalidAmountError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "amount must be greater than 0"
	}
	return fmt.Sprintf("invalid transaction amount %s for account %s: %s", e.Amount, e.AccountID, reason)
}

// LimitExceededError is returned when a configured per-operation limit is exceeded.
type LimitExceededError struct {
	AccountID uuid.UUID
	Operation string
	Amount    decimal.Decimal
	Limit     decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s amount %s exceeds limit of %s for account %s",
		e.Operation, e.Amount, e.Limit, e.AccountID)
}

// MinimumPaymentError is returned when a loan repayment is below the minimum payment.
type MinimumPaymentError struct {
	AccountID      uuid.UUID
	Amount         decimal.Decimal
	MinimumPayment decimal.Decimal
}

func (e *MinimumPaymentError) Error() string {
	return fmt.Sprintf("deposit amount %s is less than minimum payment %s required for account %s",
		e.Amount, e.MinimumPayment, e.AccountID)
}

// InsufficientFundsError is returned when a withdrawal or transfer would draw
// more than the account (plus any overdraft allowance) holds.
type InsufficientFundsError struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
	Requested decimal.Decimal
	Reason    string
}

func (e *InsufficientFundsError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("insufficient funds in account %s: %s (balance %s, requested %s)",
			e.AccountID, e.Reason, e.Balance, e.Requested)
	}
	return fmt.Sprintf("insufficient funds in account %s: balance %s, requested %s",
		e.AccountID, e.Balance, e.Requested)
}

// InvalidTransactionStateError is returned when Execute is called on a
// transaction that is not PENDING.
type InvalidTransactionStateError struct {
	Current  TransactionStatus
	Expected TransactionStatus
}

func (e *InvalidTransactionStateError) Error() string {
	return fmt.Sprintf("transaction is not in %s status, current status: %s", e.Expected, e.Current)
}

// InvalidTransactionAmountError is returned for non-positive transaction amounts.
type InvalidTransactionAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidTransactionAmountError) Error() string {
	return fmt.Sprintf("invalid transaction amount %s: amount must be greater than 0", e.Amount)
}

// AccountRequiredError is returned when a transaction is missing a participant
// account required by its type. Role is "source" or "target".
type AccountRequiredError struct {
	Role string
}

func (e *AccountRequiredError) Error() string {
	return fmt.Sprintf("%s account is required for this transaction", e.Role)
}

// SameAccountTransferError is returned when a transfer names the same account
// on both sides.
type SameAccountTransferError struct {
	AccountID uuid.UUID
}

func (e *SameAccountTransferError) Error() string {
	return fmt.Sprintf("cannot transfer to the same account %s: source and target accounts must be different", e.AccountID)
}

// ExecutionError wraps failures of the execution machinery itself, most
// importantly the compensating-transfer outcomes. ManualInterventionRequired
// is set when compensation also failed and the source balance may be
// inconsistent.
type ExecutionError struct {
	TransactionID              uuid.UUID
	Reason                     string
	ManualInterventionRequired bool
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s execution failed: %s", e.TransactionID, e.Reason)
}

// UnauthorizedAccountAccessError is returned when an account does not belong
// to the user performing the operation.
type UnauthorizedAccountAccessError struct {
	AccountID uuid.UUID
	OwnerID   string
}

func (e *UnauthorizedAccountAccessError) Error() string {
	return fmt.Sprintf("user %s does not have access to account %s", e.OwnerID, e.AccountID)
}
