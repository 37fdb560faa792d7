package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"banking-ledger/internal/config"
	"banking-ledger/internal/domain"
	"banking-ledger/internal/model"
)

// TransactionService handles deposit, withdrawal and transfer business logic,
// including the approval chain and payment gateway interaction.
type TransactionService struct {
	accounts     AccountRepository
	transactions TransactionRepository
	gateway      PaymentGateway
	events       EventSink
	approvalCfg  config.ApprovalConfig
	logger       *logrus.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	accounts AccountRepository,
	transactions TransactionRepository,
	gateway PaymentGateway,
	events EventSink,
	approvalCfg config.ApprovalConfig,
	logger *logrus.Logger,
) *TransactionService {
	return &TransactionService{
		accounts:     accounts,
		transactions: transactions,
		gateway:      gateway,
		events:       events,
		approvalCfg:  approvalCfg,
		logger:       logger,
	}
}

// Deposit credits an account, charging the payment gateway first.
func (s *TransactionService) Deposit(ctx context.Context, req *model.DepositRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	account, err := s.loadOwned(ctx, req.AccountID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	accountID := req.AccountID
	tx := domain.NewTransaction(domain.TypeDeposit, req.Amount, nil, &accountID)
	txCtx := domain.NewTransactionalContext(tx, nil, account)
	return s.process(ctx, txCtx)
}

// Withdraw debits an account and pays the amount out through the gateway.
func (s *TransactionService) Withdraw(ctx context.Context, req *model.WithdrawRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	account, err := s.loadOwned(ctx, req.AccountID, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkFunds(account, req.Amount); err != nil {
		return nil, err
	}

	accountID := req.AccountID
	tx := domain.NewTransaction(domain.TypeWithdraw, req.Amount, &accountID, nil)
	txCtx := domain.NewTransactionalContext(tx, account, nil)
	return s.process(ctx, txCtx)
}

// Transfer moves money between two accounts.
func (s *TransactionService) Transfer(ctx context.Context, req *model.TransferRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	from, err := s.loadOwned(ctx, req.FromAccountID, req.OwnerID)
	if err != nil {
		return nil, err
	}
	to, err := s.loadOwned(ctx, req.ToAccountID, "")
	if err != nil {
		return nil, err
	}
	if err := s.checkFunds(from, req.Amount); err != nil {
		return nil, err
	}

	fromID, toID := req.FromAccountID, req.ToAccountID
	tx := domain.NewTransaction(domain.TypeTransfer, req.Amount, &fromID, &toID)
	txCtx := domain.NewTransactionalContext(tx, from, to)
	return s.process(ctx, txCtx)
}

// Approve records manager approval for a blocked transaction and resumes its
// execution.
func (s *TransactionService) Approve(ctx context.Context, req *model.ApproveTransactionRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	txCtx, err := s.transactions.LoadContext(ctx, req.TransactionID)
	if err != nil {
		return nil, serviceErrorFrom(err)
	}
	if !txCtx.RequiresManagerApproval {
		return nil, &ServiceError{Code: model.ErrCodeConflict, Message: "Transaction does not require approval"}
	}
	if txCtx.Transaction.Status() != domain.StatusPending {
		return nil, &ServiceError{Code: model.ErrCodeConflict, Message: "Transaction is no longer pending"}
	}

	txCtx.Approve(req.ApprovedBy)
	s.logger.WithFields(logrus.Fields{
		"transaction_id": txCtx.Transaction.ID(),
		"approved_by":    req.ApprovedBy,
	}).Info("transaction approved")
	return s.execute(ctx, txCtx)
}

// GetTransaction retrieves a transaction with its approval state.
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.TransactionResponse, error) {
	txCtx, err := s.transactions.LoadContext(ctx, id)
	if err != nil {
		return nil, serviceErrorFrom(err)
	}
	return model.NewTransactionResponse(txCtx), nil
}

// GetAccountLedger returns an account's ledger entries, newest first.
func (s *TransactionService) GetAccountLedger(ctx context.Context, accountID uuid.UUID, ownerID string, limit int) ([]model.LedgerEntryResponse, error) {
	if _, err := s.loadOwned(ctx, accountID, ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := s.transactions.ListLedgerEntries(ctx, accountID, limit)
	if err != nil {
		return nil, serviceErrorFrom(err)
	}
	return model.NewLedgerEntryResponses(entries), nil
}

// process runs the approval chain over a fresh context, then either parks it
// pending approval or executes it.
func (s *TransactionService) process(ctx context.Context, txCtx *domain.TransactionalContext) (*model.TransactionResponse, error) {
	chain := domain.NewApprovalChain(
		s.approvalCfg.SmallTransactionThreshold,
		s.approvalCfg.HighRiskThreshold,
		s.approvalCfg.RiskScoreThreshold,
	)
	chain.Handle(txCtx)

	if txCtx.PendingApproval() {
		if err := s.transactions.SaveContext(ctx, txCtx); err != nil {
			return nil, serviceErrorFrom(err)
		}
		s.logger.WithFields(logrus.Fields{
			"transaction_id": txCtx.Transaction.ID(),
			"risk_score":     txCtx.RiskScore,
		}).Warn("transaction parked pending manager approval")
		return model.NewTransactionResponse(txCtx), nil
	}
	return s.execute(ctx, txCtx)
}

// execute runs the gateway interaction and the transaction itself, then
// persists the whole context and publishes the resulting events.
func (s *TransactionService) execute(ctx context.Context, txCtx *domain.TransactionalContext) (*model.TransactionResponse, error) {
	tx := txCtx.Transaction

	if tx.Type() == domain.TypeDeposit {
		if err := s.gateway.Charge(ctx, *tx.ToAccountID(), tx.Amount()); err != nil {
			tx.Fail("payment gateway declined the charge: " + err.Error())
			if saveErr := s.transactions.SaveContext(ctx, txCtx); saveErr != nil {
				return nil, serviceErrorFrom(saveErr)
			}
			s.events.Publish(tx.Events()...)
			return nil, &ServiceError{Code: model.ErrCodeGatewayDeclined, Message: "Payment gateway declined the charge"}
		}
	}

	txCtx.SnapshotBalances()
	execErr := tx.Execute(txCtx.FromAccount, txCtx.ToAccount)

	if err := s.transactions.SaveContext(ctx, txCtx); err != nil {
		return nil, serviceErrorFrom(err)
	}
	s.events.Publish(tx.Events()...)

	if execErr != nil {
		if tx.Type() == domain.TypeDeposit {
			if refundErr := s.gateway.Refund(ctx, *tx.ToAccountID(), tx.Amount()); refundErr != nil {
				s.logger.WithError(refundErr).WithField("transaction_id", tx.ID()).
					Error("failed to refund gateway charge for failed deposit")
			}
		}
		return nil, serviceErrorFrom(execErr)
	}

	if tx.Type() == domain.TypeWithdraw {
		if payoutErr := s.gateway.Payout(ctx, *tx.FromAccountID(), tx.Amount()); payoutErr != nil {
			s.logger.WithError(payoutErr).WithField("transaction_id", tx.ID()).
				Error("withdrawal completed but gateway payout failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"transaction_id": tx.ID(),
		"type":           tx.Type(),
		"amount":         tx.Amount(),
		"status":         tx.Status(),
	}).Info("transaction executed")
	return model.NewTransactionResponse(txCtx), nil
}

// checkFunds rejects plain standard-account withdrawals that would overdraw
// before a transaction record is created. Overdraft accounts and non-standard
// types are left to their own strategy and decorator checks.
func (s *TransactionService) checkFunds(account domain.Account, amount decimal.Decimal) error {
	if account.Type() != domain.TypeStandard {
		return nil
	}
	if _, hasOverdraft := account.Metadata()["overdraftLimit"]; hasOverdraft {
		return nil
	}
	if account.Balance().LessThan(amount) {
		return &ServiceError{Code: model.ErrCodeInsufficientFunds, Message: "Insufficient funds in source account"}
	}
	return nil
}

func (s *TransactionService) loadOwned(ctx context.Context, id uuid.UUID, ownerID string) (domain.Account, error) {
	account, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, serviceErrorFrom(err)
	}
	if ownerID != "" && account.OwnerID() != ownerID {
		return nil, serviceErrorFrom(&domain.UnauthorizedAccountAccessError{AccountID: id, OwnerID: ownerID})
	}
	return account, nil
}
