package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"banking-ledger/internal/domain"
)

// AccountTransactionRepository persists transactional contexts: the
// transaction row, its participant accounts, and the derived ledger entries
// are written in a single serializable storage transaction, so a context is
// either fully saved or not at all.
type AccountTransactionRepository struct {
	db       *sql.DB
	accounts *AccountRepository
}

// NewAccountTransactionRepository creates a new transaction repository
func NewAccountTransactionRepository(db *sql.DB, accounts *AccountRepository) *AccountTransactionRepository {
	return &AccountTransactionRepository{db: db, accounts: accounts}
}

// LoadContext reconstructs a previously saved transactional context, live
// participant accounts included.
func (r *AccountTransactionRepository) LoadContext(ctx context.Context, transactionID uuid.UUID) (*domain.TransactionalContext, error) {
	query := `
		SELECT id, from_account_id, to_account_id, tx_type, amount, status,
			requires_manager_approval, risk_score, approval_notes, approved_by, approved_at,
			from_balance_before, to_balance_before, created_at, executed_at, version
		FROM transactions
		WHERE id = $1
	`

	var (
		snap                         domain.TransactionSnapshot
		txType, status               string
		fromID, toID                 uuid.NullUUID
		riskScore                    sql.NullInt64
		approvalNotes, approvedBy    sql.NullString
		approvedAt, executedAt       sql.NullTime
		fromBefore, toBefore         decimal.NullDecimal
		requiresManagerApproval      bool
	)
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&snap.ID, &fromID, &toID, &txType, &snap.Amount, &status,
		&requiresManagerApproval, &riskScore, &approvalNotes, &approvedBy, &approvedAt,
		&fromBefore, &toBefore, &snap.CreatedAt, &executedAt, &snap.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, errors.Wrap(err, "scan transaction")
	}

	snap.Type = domain.TransactionType(txType)
	snap.Status = domain.TransactionStatus(status)
	if fromID.Valid {
		id := fromID.UUID
		snap.FromAccountID = &id
	}
	if toID.Valid {
		id := toID.UUID
		snap.ToAccountID = &id
	}
	if executedAt.Valid {
		t := executedAt.Time
		snap.ExecutedAt = &t
	}

	txCtx := &domain.TransactionalContext{
		Transaction:              domain.RestoreTransaction(snap),
		RequiresManagerApproval:  requiresManagerApproval,
		ApprovalNotes:            approvalNotes.String,
		ApprovedBy:               approvedBy.String,
		FromAccountBalanceBefore: decimalPtr(fromBefore),
		ToAccountBalanceBefore:   decimalPtr(toBefore),
	}
	if riskScore.Valid {
		score := int(riskScore.Int64)
		txCtx.RiskScore = &score
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		txCtx.ApprovedAt = &t
	}

	if snap.FromAccountID != nil {
		txCtx.FromAccount, err = r.accounts.GetAccount(ctx, *snap.FromAccountID)
		if err != nil {
			return nil, err
		}
	}
	if snap.ToAccountID != nil {
		txCtx.ToAccount, err = r.accounts.GetAccount(ctx, *snap.ToAccountID)
		if err != nil {
			return nil, err
		}
	}
	return txCtx, nil
}

// SaveContext atomically persists the context: transaction row, every
// participant account, and ledger entries for a completed transaction. Runs
// at serializable isolation so concurrent executions of the same accounts
// cannot interleave.
func (r *AccountTransactionRepository) SaveContext(ctx context.Context, txCtx *domain.TransactionalContext) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return errors.Wrap(err, "begin save context")
	}
	defer tx.Rollback()

	if txCtx.IsNew {
		err = r.insertTransaction(ctx, tx, txCtx)
	} else {
		err = r.updateTransaction(ctx, tx, txCtx)
	}
	if err != nil {
		return err
	}

	if txCtx.FromAccount != nil {
		if err := r.accounts.Save(ctx, tx, txCtx.FromAccount); err != nil {
			return err
		}
	}
	if txCtx.ToAccount != nil {
		if err := r.accounts.Save(ctx, tx, txCtx.ToAccount); err != nil {
			return err
		}
	}

	for _, entry := range txCtx.LedgerEntries() {
		if err := r.insertLedgerEntry(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit save context")
	}
	txCtx.IsNew = false
	return nil
}

func (r *AccountTransactionRepository) insertTransaction(ctx context.Context, tx *sql.Tx, txCtx *domain.TransactionalContext) error {
	snap := txCtx.Transaction.Snapshot()
	query := `
		INSERT INTO transactions (id, from_account_id, to_account_id, tx_type, amount, status,
			requires_manager_approval, risk_score, approval_notes, approved_by, approved_at,
			from_balance_before, to_balance_before, created_at, executed_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
	`
	_, err := tx.ExecContext(ctx, query,
		snap.ID, nullUUID(snap.FromAccountID), nullUUID(snap.ToAccountID),
		string(snap.Type), snap.Amount, string(snap.Status),
		txCtx.RequiresManagerApproval, nullInt(txCtx.RiskScore),
		nullString(txCtx.ApprovalNotes), nullString(txCtx.ApprovedBy), nullTime(txCtx.ApprovedAt),
		nullDecimal(txCtx.FromAccountBalanceBefore), nullDecimal(txCtx.ToAccountBalanceBefore),
		snap.CreatedAt, nullTime(snap.ExecutedAt),
	)
	return errors.Wrap(err, "insert transaction")
}

func (r *AccountTransactionRepository) updateTransaction(ctx context.Context, tx *sql.Tx, txCtx *domain.TransactionalContext) error {
	snap := txCtx.Transaction.Snapshot()
	query := `
		UPDATE transactions
		SET status = $1, requires_manager_approval = $2, risk_score = $3, approval_notes = $4,
			approved_by = $5, approved_at = $6, from_balance_before = $7, to_balance_before = $8,
			executed_at = $9, version = version + 1
		WHERE id = $10 AND version = $11
	`
	result, err := tx.ExecContext(ctx, query,
		string(snap.Status), txCtx.RequiresManagerApproval, nullInt(txCtx.RiskScore),
		nullString(txCtx.ApprovalNotes), nullString(txCtx.ApprovedBy), nullTime(txCtx.ApprovedAt),
		nullDecimal(txCtx.FromAccountBalanceBefore), nullDecimal(txCtx.ToAccountBalanceBefore),
		nullTime(snap.ExecutedAt), snap.ID, snap.Version,
	)
	if err != nil {
		return errors.Wrap(err, "update transaction")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update transaction rows affected")
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, snap.ID).Scan(&exists); err != nil {
			return errors.Wrap(err, "check transaction existence")
		}
		if !exists {
			return ErrTransactionNotFound
		}
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *AccountTransactionRepository) insertLedgerEntry(ctx context.Context, tx *sql.Tx, entry domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (transaction_id, account_id, entry_type, amount,
			balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_id, account_id, entry_type) DO NOTHING
	`
	_, err := tx.ExecContext(ctx, query,
		entry.TransactionID, entry.AccountID, string(entry.EntryType),
		entry.Amount, entry.BalanceBefore, entry.BalanceAfter, entry.CreatedAt,
	)
	return errors.Wrap(err, "insert ledger entry")
}

// GetTransaction retrieves a single transaction by ID without its accounts.
func (r *AccountTransactionRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, from_account_id, to_account_id, tx_type, amount, status, created_at, executed_at, version
		FROM transactions
		WHERE id = $1
	`
	var (
		snap           domain.TransactionSnapshot
		txType, status string
		fromID, toID   uuid.NullUUID
		executedAt     sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&snap.ID, &fromID, &toID, &txType, &snap.Amount, &status,
		&snap.CreatedAt, &executedAt, &snap.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, errors.Wrap(err, "scan transaction")
	}
	snap.Type = domain.TransactionType(txType)
	snap.Status = domain.TransactionStatus(status)
	if fromID.Valid {
		v := fromID.UUID
		snap.FromAccountID = &v
	}
	if toID.Valid {
		v := toID.UUID
		snap.ToAccountID = &v
	}
	if executedAt.Valid {
		t := executedAt.Time
		snap.ExecutedAt = &t
	}
	return domain.RestoreTransaction(snap), nil
}

// ListLedgerEntries returns an account's ledger entries, newest first.
func (r *AccountTransactionRepository) ListLedgerEntries(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT transaction_id, account_id, entry_type, amount, balance_before, balance_after, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query ledger entries")
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			entry     domain.LedgerEntry
			entryType string
		)
		err := rows.Scan(&entry.TransactionID, &entry.AccountID, &entryType,
			&entry.Amount, &entry.BalanceBefore, &entry.BalanceAfter, &entry.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan ledger entry")
		}
		entry.EntryType = domain.LedgerEntryType(entryType)
		entries = append(entries, entry)
	}
	return entries, errors.Wrap(rows.Err(), "iterate ledger entries")
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
