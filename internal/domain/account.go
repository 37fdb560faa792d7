package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"
	StatusSuspended AccountStatus = "SUSPENDED"
	StatusClosed    AccountStatus = "CLOSED"
	// StatusFrozen currently behaves like SUSPENDED. A dedicated frozen
	// behavior has not been designed yet.
	StatusFrozen AccountStatus = "FROZEN"
)

// AccountType selects the strategy set applied at construction time.
type AccountType string

const (
	TypeStandard   AccountType = "STANDARD"
	TypeLoan       AccountType = "LOAN"
	TypeFeeAccount AccountType = "FEE_ACCOUNT"
)

// Metadata is a string-keyed audit/extension bag carried by every account:
// operation counters, last-operation timestamps, loan running totals,
// decorator markers.
type Metadata map[string]string

// IncrementCount bumps an integer counter stored under key.
func (m Metadata) IncrementCount(key string) {
	n, _ := strconv.Atoi(m[key])
	m[key] = strconv.Itoa(n + 1)
}

// AddDecimal adds amount to a decimal total stored under key.
func (m Metadata) AddDecimal(key string, amount decimal.Decimal) {
	prev, err := decimal.NewFromString(m[key])
	if err != nil {
		prev = decimal.Zero
	}
	m[key] = prev.Add(amount).String()
}

// SetTime stores t under key in RFC 3339 format.
func (m Metadata) SetTime(key string, t time.Time) {
	m[key] = t.UTC().Format(time.RFC3339Nano)
}

// Clone returns an independent copy of the metadata bag.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Account is the aggregate contract shared by individual accounts, group
// accounts, and decorated accounts. Deposit and Withdraw route through the
// account's lifecycle gate and then its configured strategy; all violations
// surface as typed domain errors.
type Account interface {
	ID() uuid.UUID
	OwnerID() string
	Type() AccountType
	Status() AccountStatus
	Balance() decimal.Decimal
	Metadata() Metadata
	CreatedAt() time.Time
	UpdatedAt() time.Time

	Deposit(amount decimal.Decimal) error
	Withdraw(amount decimal.Decimal) error
	Suspend() error
	Close() error

	// Interest computes accrued interest on the given principal using the
	// account's interest strategy. Accounts without one accrue nothing.
	Interest(principal decimal.Decimal) decimal.Decimal
}

// accountBase carries identity, lifecycle state, and the audit bag shared by
// both account variants. Lifecycle transitions are the only place status and
// updatedAt change together.
type accountBase struct {
	id          uuid.UUID
	ownerID     string
	accountType AccountType
	status      AccountStatus
	metadata    Metadata
	createdAt   time.Time
	updatedAt   time.Time
	version     int64
}

func (b *accountBase) ID() uuid.UUID         { return b.id }
func (b *accountBase) OwnerID() string       { return b.ownerID }
func (b *accountBase) Type() AccountType     { return b.accountType }
func (b *accountBase) Status() AccountStatus { return b.status }
func (b *accountBase) Metadata() Metadata    { return b.metadata }
func (b *accountBase) CreatedAt() time.Time  { return b.createdAt }
func (b *accountBase) UpdatedAt() time.Time  { return b.updatedAt }

// guardOperation gates deposit/withdraw on the current lifecycle state.
// FROZEN is treated as suspended for now.
func (b *accountBase) guardOperation(operation string) error {
	switch b.status {
	case StatusActive:
		return nil
	case StatusClosed:
		return &AccountClosedError{AccountID: b.id, Operation: operation}
	default: // SUSPENDED, FROZEN
		return &AccountNotActiveError{AccountID: b.id, Status: b.status, Operation: operation}
	}
}

// Suspend moves the account to SUSPENDED. Suspending an already suspended
// account is a no-op; suspending a closed account is an invalid transition.
func (b *accountBase) Suspend() error {
	switch b.status {
	case StatusActive, StatusFrozen:
		b.status = StatusSuspended
		b.updatedAt = time.Now()
		return nil
	case StatusSuspended:
		return nil
	default:
		return &InvalidStateTransitionError{AccountID: b.id, From: b.status, To: StatusSuspended}
	}
}

// Close moves the account to CLOSED, the terminal state. Closing an already
// closed account is a no-op.
func (b *accountBase) Close() error {
	if b.status == StatusClosed {
		return nil
	}
	b.status = StatusClosed
	b.updatedAt = time.Now()
	return nil
}

// Version is the optimistic-concurrency counter enforced by the persistence
// layer, not by the aggregate itself.
func (b *accountBase) Version() int64 { return b.version }

func (b *accountBase) touch() { b.updatedAt = time.Now() }

// IndividualAccount owns a numeric balance directly and delegates deposit and
// withdraw to the strategies chosen for its account type.
type IndividualAccount struct {
	accountBase
	primaryOwnerName string
	balance          decimal.Decimal
	withdrawStrategy WithdrawStrategy
	depositStrategy  DepositStrategy
	interestStrategy InterestStrategy
}

func (a *IndividualAccount) PrimaryOwnerName() string { return a.primaryOwnerName }

func (a *IndividualAccount) Balance() decimal.Decimal { return a.balance }

// Deposit routes through the lifecycle gate, then the deposit strategy.
func (a *IndividualAccount) Deposit(amount decimal.Decimal) error {
	if err := a.guardOperation("deposit"); err != nil {
		return err
	}
	if a.depositStrategy == nil {
		return &DepositNotAllowedError{AccountID: a.id, AccountType: a.accountType, Reason: "no deposit strategy configured"}
	}
	return a.depositStrategy.Deposit(a, amount)
}

// Withdraw routes through the lifecycle gate, then the withdraw strategy.
func (a *IndividualAccount) Withdraw(amount decimal.Decimal) error {
	if err := a.guardOperation("withdraw"); err != nil {
		return err
	}
	if a.withdrawStrategy == nil {
		return &WithdrawalNotAllowedError{AccountID: a.id, AccountType: a.accountType, Reason: "no withdraw strategy configured"}
	}
	return a.withdrawStrategy.Withdraw(a, amount)
}

func (a *IndividualAccount) Interest(principal decimal.Decimal) decimal.Decimal {
	if a.interestStrategy == nil {
		return decimal.Zero
	}
	return a.interestStrategy.Calculate(principal)
}

// increaseBalance and decreaseBalance are the raw balance mutators used by
// strategies once their checks have passed.
func (a *IndividualAccount) increaseBalance(amount decimal.Decimal) { a.balance = a.balance.Add(amount) }
func (a *IndividualAccount) decreaseBalance(amount decimal.Decimal) { a.balance = a.balance.Sub(amount) }
