package service

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"banking-ledger/internal/config"
	"banking-ledger/internal/domain"
	"banking-ledger/internal/model"
)

func newAccountService(repo *fakeAccountRepo) *AccountService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAccountService(repo, config.LoanConfig{
		DefaultInterestRate: decimal.NewFromFloat(0.05),
		DefaultMinPayment:   decimal.NewFromInt(100),
	}, log)
}

func TestAccountService_CreateAccount(t *testing.T) {
	tests := []struct {
		name        string
		req         *model.CreateAccountRequest
		shouldError bool
		errorMsg    string
	}{
		{
			name: "valid standard account",
			req:  &model.CreateAccountRequest{OwnerID: "owner-1", OwnerName: "Alice", Type: "STANDARD"},
		},
		{
			name: "valid loan account",
			req:  &model.CreateAccountRequest{OwnerID: "owner-1", OwnerName: "Alice", Type: "LOAN"},
		},
		{
			name:        "missing owner",
			req:         &model.CreateAccountRequest{Type: "STANDARD"},
			shouldError: true,
			errorMsg:    "owner_id is required",
		},
		{
			name:        "missing type",
			req:         &model.CreateAccountRequest{OwnerID: "owner-1"},
			shouldError: true,
			errorMsg:    "account type is required",
		},
		{
			name:        "unknown type",
			req:         &model.CreateAccountRequest{OwnerID: "owner-1", Type: "SAVINGS"},
			shouldError: true,
			errorMsg:    "unknown account type",
		},
		{
			name: "negative withdrawal limit",
			req: &model.CreateAccountRequest{
				OwnerID: "owner-1", Type: "STANDARD",
				MaxWithdrawal: decimalPtr("-10"),
			},
			shouldError: true,
			errorMsg:    "max_withdrawal must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeAccountRepo()
			svc := newAccountService(repo)

			resp, err := svc.CreateAccount(context.Background(), tt.req)

			if tt.shouldError {
				assert.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, string(domain.StatusActive), resp.Status)
			assert.Equal(t, tt.req.Type, resp.Type)
			assert.Contains(t, repo.accounts, resp.ID)
		})
	}
}

func TestAccountService_CreateAccountWithDecorators(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newAccountService(repo)

	resp, err := svc.CreateAccount(context.Background(), &model.CreateAccountRequest{
		OwnerID:        "owner-1",
		OwnerName:      "Alice",
		Type:           "STANDARD",
		OverdraftLimit: decimalPtr("200"),
		Insured:        true,
		Premium:        true,
	})

	assert.NoError(t, err)
	assert.Equal(t, "200", resp.Metadata["overdraftLimit"])
	assert.Equal(t, "true", resp.Metadata["insured"])
	assert.Equal(t, "true", resp.Metadata["premium"])

	// The stored account enforces the overdraft boundary.
	account := repo.accounts[resp.ID]
	err = account.Withdraw(decimal.NewFromInt(500))
	var insufficient *domain.InsufficientFundsError
	assert.ErrorAs(t, err, &insufficient)
}

func TestAccountService_CreateLoanAppliesDefaults(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newAccountService(repo)

	resp, err := svc.CreateAccount(context.Background(), &model.CreateAccountRequest{
		OwnerID: "owner-1", OwnerName: "Borrower", Type: "LOAN",
	})
	assert.NoError(t, err)

	snap := domain.SnapshotAccount(repo.accounts[resp.ID])
	assert.NotNil(t, snap.Strategy.LoanInterestRate)
	assert.NotNil(t, snap.Strategy.LoanMinPayment)
	assert.Equal(t, "0.05", snap.Strategy.LoanInterestRate.String())
	assert.Equal(t, "100", snap.Strategy.LoanMinPayment.String())
}

func TestAccountService_CreateGroupAccount(t *testing.T) {
	member1 := standardAccount("owner-1", 100)
	member2 := standardAccount("owner-2", 200)
	repo := newFakeAccountRepo(member1, member2)
	svc := newAccountService(repo)

	resp, err := svc.CreateGroupAccount(context.Background(), &model.CreateGroupAccountRequest{
		OwnerID:   "owner-1",
		GroupName: "family",
		MemberIDs: []uuid.UUID{member1.ID(), member2.ID()},
	})

	assert.NoError(t, err)
	assert.True(t, resp.IsGroup)
	assert.Equal(t, "300", resp.Balance.String())
}

func TestAccountService_CreateGroupAccountErrors(t *testing.T) {
	member := standardAccount("owner-1", 100)
	repo := newFakeAccountRepo(member)
	svc := newAccountService(repo)

	t.Run("unknown member", func(t *testing.T) {
		_, err := svc.CreateGroupAccount(context.Background(), &model.CreateGroupAccountRequest{
			OwnerID:   "owner-1",
			GroupName: "family",
			MemberIDs: []uuid.UUID{uuid.New()},
		})
		serviceErr, ok := err.(*ServiceError)
		assert.True(t, ok)
		assert.Equal(t, model.ErrCodeNotFound, serviceErr.Code)
	})

	t.Run("duplicate members", func(t *testing.T) {
		_, err := svc.CreateGroupAccount(context.Background(), &model.CreateGroupAccountRequest{
			OwnerID:   "owner-1",
			GroupName: "family",
			MemberIDs: []uuid.UUID{member.ID(), member.ID()},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate member")
	})

	t.Run("group cannot contain a group", func(t *testing.T) {
		group := domain.NewGroupAccount("owner-1", "inner", domain.TypeStandard, nil)
		repo := newFakeAccountRepo(member, group)
		_, err := newAccountService(repo).CreateGroupAccount(context.Background(), &model.CreateGroupAccountRequest{
			OwnerID:   "owner-1",
			GroupName: "outer",
			MemberIDs: []uuid.UUID{group.ID()},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be individual accounts")
	})
}

func TestAccountService_GetAccountOwnership(t *testing.T) {
	account := standardAccount("owner-1", 100)
	repo := newFakeAccountRepo(account)
	svc := newAccountService(repo)

	resp, err := svc.GetAccount(context.Background(), account.ID(), "owner-1")
	assert.NoError(t, err)
	assert.Equal(t, account.ID(), resp.ID)

	// An empty owner skips the ownership check.
	_, err = svc.GetAccount(context.Background(), account.ID(), "")
	assert.NoError(t, err)

	_, err = svc.GetAccount(context.Background(), account.ID(), "intruder")
	serviceErr, ok := err.(*ServiceError)
	assert.True(t, ok)
	assert.Equal(t, model.ErrCodeForbidden, serviceErr.Code)
}

func TestAccountService_Lifecycle(t *testing.T) {
	account := standardAccount("owner-1", 100)
	repo := newFakeAccountRepo(account)
	svc := newAccountService(repo)

	resp, err := svc.SuspendAccount(context.Background(), account.ID(), "owner-1")
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusSuspended), resp.Status)

	resp, err = svc.CloseAccount(context.Background(), account.ID(), "owner-1")
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusClosed), resp.Status)

	// Suspending a closed account is rejected.
	_, err = svc.SuspendAccount(context.Background(), account.ID(), "owner-1")
	serviceErr, ok := err.(*ServiceError)
	assert.True(t, ok)
	assert.Equal(t, model.ErrCodeAccountState, serviceErr.Code)
}

func decimalPtr(s string) *decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return &d
}
