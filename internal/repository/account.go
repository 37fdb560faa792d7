package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"banking-ledger/internal/domain"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting the same queries run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountRepository handles account persistence. Accounts are stored as flat
// snapshots plus a membership table for group accounts; decorators are
// re-applied from metadata on load.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, owner_id, account_type, is_group, balance, status,
		primary_owner_name, group_name, loan_interest_rate, loan_min_payment,
		max_deposit, max_withdrawal, metadata, created_at, updated_at, version`

// Create inserts a new account. Group accounts also get their membership rows.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin create account")
	}
	defer tx.Rollback()

	if err := r.insert(ctx, tx, account); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit create account")
}

func (r *AccountRepository) insert(ctx context.Context, q querier, account domain.Account) error {
	snap := domain.SnapshotAccount(account)
	metadata, err := json.Marshal(snap.Metadata)
	if err != nil {
		return errors.Wrap(err, "marshal account metadata")
	}

	query := `
		INSERT INTO accounts (id, owner_id, account_type, is_group, balance, status,
			primary_owner_name, group_name, loan_interest_rate, loan_min_payment,
			max_deposit, max_withdrawal, metadata, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
	`
	_, err = q.ExecContext(ctx, query,
		snap.ID, snap.OwnerID, string(snap.Type), snap.IsGroup, snap.Balance, string(snap.Status),
		nullString(snap.PrimaryOwnerName), nullString(snap.GroupName),
		nullDecimal(snap.Strategy.LoanInterestRate), nullDecimal(snap.Strategy.LoanMinPayment),
		nullDecimal(snap.Strategy.MaxDeposit), nullDecimal(snap.Strategy.MaxWithdrawal),
		metadata, snap.CreatedAt, snap.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert account")
	}

	if group, ok := domain.UnwrapAccount(account).(*domain.GroupAccount); ok {
		for _, member := range group.Members() {
			_, err = q.ExecContext(ctx, `
				INSERT INTO account_group_members (group_account_id, member_account_id)
				VALUES ($1, $2)
			`, snap.ID, member.ID())
			if err != nil {
				return errors.Wrap(err, "insert group member")
			}
		}
	}
	return nil
}

// GetAccount retrieves an account by ID, reconstructing the aggregate with
// its strategies, members, and decorators.
func (r *AccountRepository) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.get(ctx, r.db, id)
}

// GetAccountTx is GetAccount inside an existing transaction, used by the
// context repository so participant rows are read under the same isolation.
func (r *AccountRepository) GetAccountTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (domain.Account, error) {
	return r.get(ctx, tx, id)
}

func (r *AccountRepository) get(ctx context.Context, q querier, id uuid.UUID) (domain.Account, error) {
	snap, err := r.getSnapshot(ctx, q, id)
	if err != nil {
		return nil, err
	}

	if snap.IsGroup {
		members, err := r.getMembers(ctx, q, id)
		if err != nil {
			return nil, err
		}
		return domain.RestoreGroupAccount(snap, members), nil
	}
	return domain.DecorateFromMetadata(domain.RestoreIndividualAccount(snap)), nil
}

func (r *AccountRepository) getSnapshot(ctx context.Context, q querier, id uuid.UUID) (domain.AccountSnapshot, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanSnapshot(q.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) getMembers(ctx context.Context, q querier, groupID uuid.UUID) ([]*domain.IndividualAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		JOIN account_group_members gm ON gm.member_account_id = a.id
		WHERE gm.group_account_id = $1
		ORDER BY gm.joined_at
	`
	rows, err := q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "query group members")
	}
	defer rows.Close()

	var members []*domain.IndividualAccount
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, domain.RestoreIndividualAccount(snap))
	}
	return members, errors.Wrap(rows.Err(), "iterate group members")
}

// Save persists account mutations inside an existing transaction with an
// optimistic version check. Group saves cascade to member accounts.
func (r *AccountRepository) Save(ctx context.Context, tx *sql.Tx, account domain.Account) error {
	snap := domain.SnapshotAccount(account)
	metadata, err := json.Marshal(snap.Metadata)
	if err != nil {
		return errors.Wrap(err, "marshal account metadata")
	}

	query := `
		UPDATE accounts
		SET balance = $1, status = $2, metadata = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`
	result, err := tx.ExecContext(ctx, query,
		snap.Balance, string(snap.Status), metadata, snap.UpdatedAt, snap.ID, snap.Version)
	if err != nil {
		return errors.Wrap(err, "update account")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update account rows affected")
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, snap.ID).Scan(&exists); err != nil {
			return errors.Wrap(err, "check account existence")
		}
		if !exists {
			return ErrAccountNotFound
		}
		return ErrConcurrentUpdate
	}

	if group, ok := domain.UnwrapAccount(account).(*domain.GroupAccount); ok {
		for _, member := range group.Members() {
			if err := r.Save(ctx, tx, member); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveAccount persists account mutations in its own transaction, for
// lifecycle changes outside a transactional context.
func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save account")
	}
	defer tx.Rollback()

	if err := r.Save(ctx, tx, account); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit save account")
}

// scanner lets scanSnapshot work with both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (domain.AccountSnapshot, error) {
	var (
		snap                           domain.AccountSnapshot
		accountType, status            string
		primaryOwnerName, groupName    sql.NullString
		loanInterestRate, loanMinPay   decimal.NullDecimal
		maxDeposit, maxWithdrawal      decimal.NullDecimal
		metadata                       []byte
	)
	err := row.Scan(
		&snap.ID, &snap.OwnerID, &accountType, &snap.IsGroup, &snap.Balance, &status,
		&primaryOwnerName, &groupName, &loanInterestRate, &loanMinPay,
		&maxDeposit, &maxWithdrawal, &metadata, &snap.CreatedAt, &snap.UpdatedAt, &snap.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return snap, ErrAccountNotFound
		}
		return snap, errors.Wrap(err, "scan account")
	}

	snap.Type = domain.AccountType(accountType)
	snap.Status = domain.AccountStatus(status)
	snap.PrimaryOwnerName = primaryOwnerName.String
	snap.GroupName = groupName.String
	snap.Strategy = domain.StrategyConfig{
		LoanInterestRate: decimalPtr(loanInterestRate),
		LoanMinPayment:   decimalPtr(loanMinPay),
		MaxDeposit:       decimalPtr(maxDeposit),
		MaxWithdrawal:    decimalPtr(maxWithdrawal),
	}
	if len(metadata) > 0 {
		md := domain.Metadata{}
		if err := json.Unmarshal(metadata, &md); err != nil {
			return snap, errors.Wrap(err, "unmarshal account metadata")
		}
		snap.Metadata = md
	}
	return snap, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
