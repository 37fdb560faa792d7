package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StrategyConfig carries the optional per-account strategy parameters chosen
// at construction time. Nil fields fall back to strategy defaults or no
// limit at all.
type StrategyConfig struct {
	MaxWithdrawal    *decimal.Decimal
	MaxDeposit       *decimal.Decimal
	LoanInterestRate *decimal.Decimal
	LoanMinPayment   *decimal.Decimal
}

// AccountSnapshot is the flat persistence view of an account aggregate, used
// by repositories to store and reconstruct accounts without reaching into
// aggregate internals.
type AccountSnapshot struct {
	ID               uuid.UUID
	OwnerID          string
	Type             AccountType
	Status           AccountStatus
	IsGroup          bool
	Balance          decimal.Decimal
	PrimaryOwnerName string
	GroupName        string
	Metadata         Metadata
	Strategy         StrategyConfig
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

// NewIndividualAccount creates an ACTIVE individual account with strategies
// selected for its type.
func NewIndividualAccount(ownerID, primaryOwnerName string, accountType AccountType, cfg StrategyConfig) *IndividualAccount {
	now := time.Now()
	a := &IndividualAccount{
		accountBase: accountBase{
			id:          uuid.New(),
			ownerID:     ownerID,
			accountType: accountType,
			status:      StatusActive,
			metadata:    Metadata{"accountType": string(accountType)},
			createdAt:   now,
			updatedAt:   now,
		},
		primaryOwnerName: primaryOwnerName,
		balance:          decimal.Zero,
	}
	a.metadata["primaryOwnerName"] = primaryOwnerName
	applyStrategies(a, cfg)
	return a
}

// NewGroupAccount creates an ACTIVE group account over the given member
// accounts. The group holds non-owning references: members remain
// independently owned and persisted accounts.
func NewGroupAccount(ownerID, groupName string, accountType AccountType, members []*IndividualAccount) *GroupAccount {
	now := time.Now()
	g := &GroupAccount{
		accountBase: accountBase{
			id:          uuid.New(),
			ownerID:     ownerID,
			accountType: accountType,
			status:      StatusActive,
			metadata:    Metadata{"accountType": string(accountType), "groupName": groupName},
			createdAt:   now,
			updatedAt:   now,
		},
		groupName: groupName,
		members:   members,
	}
	return g
}

// RestoreIndividualAccount reconstructs an individual account from its
// persisted snapshot.
func RestoreIndividualAccount(snap AccountSnapshot) *IndividualAccount {
	md := snap.Metadata
	if md == nil {
		md = Metadata{}
	}
	a := &IndividualAccount{
		accountBase: accountBase{
			id:          snap.ID,
			ownerID:     snap.OwnerID,
			accountType: snap.Type,
			status:      snap.Status,
			metadata:    md,
			createdAt:   snap.CreatedAt,
			updatedAt:   snap.UpdatedAt,
			version:     snap.Version,
		},
		primaryOwnerName: snap.PrimaryOwnerName,
		balance:          snap.Balance,
	}
	applyStrategies(a, snap.Strategy)
	return a
}

// RestoreGroupAccount reconstructs a group account from its snapshot and the
// already-restored member accounts.
func RestoreGroupAccount(snap AccountSnapshot, members []*IndividualAccount) *GroupAccount {
	md := snap.Metadata
	if md == nil {
		md = Metadata{}
	}
	return &GroupAccount{
		accountBase: accountBase{
			id:          snap.ID,
			ownerID:     snap.OwnerID,
			accountType: snap.Type,
			status:      snap.Status,
			metadata:    md,
			createdAt:   snap.CreatedAt,
			updatedAt:   snap.UpdatedAt,
			version:     snap.Version,
		},
		groupName: snap.GroupName,
		members:   members,
	}
}

// applyStrategies selects the strategy set for the account type:
// loans repay only, fee accounts receive only, standard accounts get
// symmetric limit-checked strategies.
func applyStrategies(a *IndividualAccount, cfg StrategyConfig) {
	switch a.accountType {
	case TypeLoan:
		a.withdrawStrategy = NoWithdrawStrategy{}
		a.depositStrategy = NewLoanAccountStrategy(derefOrZero(cfg.LoanMinPayment))
		a.interestStrategy = NewLoanInterestStrategy(derefOrZero(cfg.LoanInterestRate))
	case TypeFeeAccount:
		a.withdrawStrategy = NoWithdrawStrategy{}
		a.depositStrategy = NewStandardAccountStrategy(cfg.MaxWithdrawal, cfg.MaxDeposit)
	default:
		std := NewStandardAccountStrategy(cfg.MaxWithdrawal, cfg.MaxDeposit)
		a.withdrawStrategy = std
		a.depositStrategy = std
	}
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Snapshot exports the account for persistence.
func (a *IndividualAccount) Snapshot() AccountSnapshot {
	snap := AccountSnapshot{
		ID:               a.id,
		OwnerID:          a.ownerID,
		Type:             a.accountType,
		Status:           a.status,
		Balance:          a.balance,
		PrimaryOwnerName: a.primaryOwnerName,
		Metadata:         a.metadata.Clone(),
		CreatedAt:        a.createdAt,
		UpdatedAt:        a.updatedAt,
		Version:          a.version,
	}
	if s, ok := a.withdrawStrategy.(*StandardAccountStrategy); ok {
		snap.Strategy.MaxWithdrawal = s.maxWithdrawal
		snap.Strategy.MaxDeposit = s.maxDeposit
	}
	if s, ok := a.depositStrategy.(*StandardAccountStrategy); ok {
		snap.Strategy.MaxWithdrawal = s.maxWithdrawal
		snap.Strategy.MaxDeposit = s.maxDeposit
	}
	if s, ok := a.depositStrategy.(*LoanAccountStrategy); ok {
		mp := s.minPayment
		snap.Strategy.LoanMinPayment = &mp
	}
	if s, ok := a.interestStrategy.(*LoanInterestStrategy); ok {
		r := s.rate
		snap.Strategy.LoanInterestRate = &r
	}
	return snap
}

// Snapshot exports the group account for persistence; member balances are
// persisted on the member accounts themselves.
func (g *GroupAccount) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ID:        g.id,
		OwnerID:   g.ownerID,
		Type:      g.accountType,
		Status:    g.status,
		IsGroup:   true,
		Balance:   g.Balance(),
		GroupName: g.groupName,
		Metadata:  g.metadata.Clone(),
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
		Version:   g.version,
	}
}

// DecorateFromMetadata re-applies decorators recorded in the account's
// metadata, outermost last: overdraft, then insurance, then premium. Used
// when reconstructing accounts from storage.
func DecorateFromMetadata(account Account) Account {
	md := account.Metadata()
	if raw, ok := md["overdraftLimit"]; ok {
		if limit, err := decimal.NewFromString(raw); err == nil {
			account = NewOverdraftAccount(account, limit)
		}
	}
	if md["insured"] == "true" {
		fee, err := decimal.NewFromString(md["insuranceFeePercent"])
		if err != nil {
			fee = decimal.NewFromFloat(0.01)
		}
		account = NewInsuranceAccount(account, fee)
	}
	if md["premium"] == "true" {
		bonus, err := decimal.NewFromString(md["premiumDepositBonusPercent"])
		if err != nil {
			bonus = decimal.NewFromFloat(0.01)
		}
		fee, err := decimal.NewFromString(md["premiumWithdrawFeePercent"])
		if err != nil {
			fee = decimal.NewFromFloat(0.005)
		}
		account = NewPremiumAccount(account, bonus, fee)
	}
	return account
}

// UnwrapAccount peels all decorators off an account, returning the
// underlying individual or group aggregate.
func UnwrapAccount(a Account) Account {
	type wrapper interface{ Unwrap() Account }
	for {
		w, ok := a.(wrapper)
		if !ok {
			return a
		}
		a = w.Unwrap()
	}
}

// SnapshotAccount exports any account, decorated or not, for persistence.
func SnapshotAccount(a Account) AccountSnapshot {
	switch v := UnwrapAccount(a).(type) {
	case *IndividualAccount:
		return v.Snapshot()
	case *GroupAccount:
		return v.Snapshot()
	default:
		return AccountSnapshot{}
	}
}

// TransactionSnapshot is the flat persistence view of a transaction.
type TransactionSnapshot struct {
	ID            uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Type          TransactionType
	Amount        decimal.Decimal
	Status        TransactionStatus
	CreatedAt     time.Time
	ExecutedAt    *time.Time
	Version       int64
}

// RestoreTransaction reconstructs a transaction from its persisted snapshot.
func RestoreTransaction(snap TransactionSnapshot) *Transaction {
	return &Transaction{
		id:            snap.ID,
		fromAccountID: snap.FromAccountID,
		toAccountID:   snap.ToAccountID,
		txType:        snap.Type,
		amount:        snap.Amount,
		status:        snap.Status,
		createdAt:     snap.CreatedAt,
		executedAt:    snap.ExecutedAt,
		version:       snap.Version,
	}
}

// Snapshot exports the transaction for persistence.
func (t *Transaction) Snapshot() TransactionSnapshot {
	return TransactionSnapshot{
		ID:            t.id,
		FromAccountID: t.fromAccountID,
		ToAccountID:   t.toAccountID,
		Type:          t.txType,
		Amount:        t.amount,
		Status:        t.status,
		CreatedAt:     t.createdAt,
		ExecutedAt:    t.executedAt,
		Version:       t.version,
	}
}
