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

// Default decorator rates applied when the caller does not specify their own.
var (
	defaultInsuranceFee = decimal.NewFromFloat(0.01)
	defaultDepositBonus = decimal.NewFromFloat(0.01)
	defaultWithdrawFee  = decimal.NewFromFloat(0.005)
)

// AccountService handles account lifecycle business logic
type AccountService struct {
	accounts AccountRepository
	loanCfg  config.LoanConfig
	logger   *logrus.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountRepository, loanCfg config.LoanConfig, logger *logrus.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		loanCfg:  loanCfg,
		logger:   logger,
	}
}

// CreateAccount opens a new individual account with the requested type,
// limits and optional feature decorators.
func (s *AccountService) CreateAccount(ctx context.Context, req *model.CreateAccountRequest) (*model.AccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	accountType := domain.AccountType(req.Type)
	cfg := domain.StrategyConfig{
		MaxWithdrawal:    req.MaxWithdrawal,
		MaxDeposit:       req.MaxDeposit,
		LoanInterestRate: req.LoanInterestRate,
		LoanMinPayment:   req.LoanMinPayment,
	}
	if accountType == domain.TypeLoan {
		if cfg.LoanInterestRate == nil {
			rate := s.loanCfg.DefaultInterestRate
			cfg.LoanInterestRate = &rate
		}
		if cfg.LoanMinPayment == nil {
			min := s.loanCfg.DefaultMinPayment
			cfg.LoanMinPayment = &min
		}
	}

	var account domain.Account = domain.NewIndividualAccount(req.OwnerID, req.OwnerName, accountType, cfg)
	account = decorateAccount(account, req)

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, serviceErrorFrom(err)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID(),
		"owner_id":   account.OwnerID(),
		"type":       account.Type(),
	}).Info("account created")
	return model.NewAccountResponse(account), nil
}

// decorateAccount applies the requested feature decorators in a fixed order
// so reconstruction from metadata produces the same wrapping.
func decorateAccount(account domain.Account, req *model.CreateAccountRequest) domain.Account {
	if req.OverdraftLimit != nil {
		account = domain.NewOverdraftAccount(account, *req.OverdraftLimit)
	}
	if req.Insured {
		fee := defaultInsuranceFee
		if req.InsuranceFeePercent != nil {
			fee = *req.InsuranceFeePercent
		}
		account = domain.NewInsuranceAccount(account, fee)
	}
	if req.Premium {
		bonus := defaultDepositBonus
		if req.DepositBonusPercent != nil {
			bonus = *req.DepositBonusPercent
		}
		fee := defaultWithdrawFee
		if req.WithdrawFeePercent != nil {
			fee = *req.WithdrawFeePercent
		}
		account = domain.NewPremiumAccount(account, bonus, fee)
	}
	return account
}

// CreateGroupAccount opens a group account over existing individual accounts.
func (s *AccountService) CreateGroupAccount(ctx context.Context, req *model.CreateGroupAccountRequest) (*model.AccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	members := make([]*domain.IndividualAccount, 0, len(req.MemberIDs))
	for _, memberID := range req.MemberIDs {
		account, err := s.accounts.GetAccount(ctx, memberID)
		if err != nil {
			return nil, serviceErrorFrom(err)
		}
		member, ok := domain.UnwrapAccount(account).(*domain.IndividualAccount)
		if !ok {
			return nil, &ServiceError{
				Code:    model.ErrCodeValidation,
				Message: "group members must be individual accounts: " + memberID.String(),
			}
		}
		members = append(members, member)
	}

	group := domain.NewGroupAccount(req.OwnerID, req.GroupName, domain.TypeStandard, members)
	if err := s.accounts.Create(ctx, group); err != nil {
		return nil, serviceErrorFrom(err)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": group.ID(),
		"owner_id":   group.OwnerID(),
		"members":    len(members),
	}).Info("group account created")
	return model.NewAccountResponse(group), nil
}

// GetAccount retrieves an account by ID. A non-empty ownerID restricts access
// to the account's owner.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID, ownerID string) (*model.AccountResponse, error) {
	account, err := s.loadOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return model.NewAccountResponse(account), nil
}

// SuspendAccount moves an account to SUSPENDED.
func (s *AccountService) SuspendAccount(ctx context.Context, id uuid.UUID, ownerID string) (*model.AccountResponse, error) {
	return s.transition(ctx, id, ownerID, domain.Account.Suspend, "account suspended")
}

// CloseAccount moves an account to CLOSED.
func (s *AccountService) CloseAccount(ctx context.Context, id uuid.UUID, ownerID string) (*model.AccountResponse, error) {
	return s.transition(ctx, id, ownerID, domain.Account.Close, "account closed")
}

func (s *AccountService) transition(ctx context.Context, id uuid.UUID, ownerID string, apply func(domain.Account) error, logMsg string) (*model.AccountResponse, error) {
	account, err := s.loadOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := apply(account); err != nil {
		return nil, serviceErrorFrom(err)
	}
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return nil, serviceErrorFrom(err)
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID(),
		"status":     account.Status(),
	}).Info(logMsg)
	return model.NewAccountResponse(account), nil
}

func (s *AccountService) loadOwned(ctx context.Context, id uuid.UUID, ownerID string) (domain.Account, error) {
	account, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, serviceErrorFrom(err)
	}
	if ownerID != "" && account.OwnerID() != ownerID {
		return nil, serviceErrorFrom(&domain.UnauthorizedAccountAccessError{AccountID: id, OwnerID: ownerID})
	}
	return account, nil
}
