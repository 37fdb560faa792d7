package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTransferContext(amount, fromBalance, toBalance decimal.Decimal) *TransactionalContext {
	from := restoredAccount(StatusActive, fromBalance)
	to := restoredAccount(StatusActive, toBalance)
	fromID, toID := from.ID(), to.ID()
	tx := NewTransaction(TypeTransfer, amount, &fromID, &toID)
	return NewTransactionalContext(tx, from, to)
}

func TestSmallTransactionHandler_StopsChain(t *testing.T) {
	// The risk handler would score this transfer, but small transactions are
	// auto-approved before it runs.
	ctx := newTransferContext(decimal.NewFromInt(1000), decimal.NewFromInt(1000), decimal.NewFromInt(10))

	chain := NewApprovalChain(decimal.NewFromInt(1000), decimal.NewFromInt(10000), 70)
	chain.Handle(ctx)

	assert.False(t, ctx.RequiresManagerApproval)
	assert.False(t, ctx.PendingApproval())
	assert.Nil(t, ctx.RiskScore, "risk handler must not run for small transactions")
}

func TestRiskCheckHandler_Scoring(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		fromBalance decimal.Decimal
		toBalance   decimal.Decimal
		wantScore   int
	}{
		{
			name:        "medium amount into poor target",
			amount:      decimal.NewFromInt(6000),
			fromBalance: decimal.NewFromInt(10000),
			toBalance:   decimal.NewFromInt(50),
			wantScore:   35, // 20 medium amount + 15 poor target
		},
		{
			name:        "high amount draining the source",
			amount:      decimal.NewFromInt(12000),
			fromBalance: decimal.NewFromInt(12050),
			toBalance:   decimal.NewFromInt(50),
			wantScore:   105, // 40 + 30 draw ratio + 20 low remainder + 15 poor target
		},
		{
			name:        "modest amount with healthy balances",
			amount:      decimal.NewFromInt(2000),
			fromBalance: decimal.NewFromInt(100000),
			toBalance:   decimal.NewFromInt(5000),
			wantScore:   0,
		},
		{
			name:        "medium amount only",
			amount:      decimal.NewFromInt(6000),
			fromBalance: decimal.NewFromInt(100000),
			toBalance:   decimal.NewFromInt(5000),
			wantScore:   20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTransferContext(tt.amount, tt.fromBalance, tt.toBalance)

			handler := NewRiskCheckHandler(decimal.NewFromInt(10000), 70)
			handler.Handle(ctx)

			assert.NotNil(t, ctx.RiskScore)
			assert.Equal(t, tt.wantScore, *ctx.RiskScore)
		})
	}
}

func TestRiskCheckHandler_ThresholdBoundary(t *testing.T) {
	// This transfer scores exactly 35.
	build := func() *TransactionalContext {
		return newTransferContext(decimal.NewFromInt(6000), decimal.NewFromInt(10000), decimal.NewFromInt(50))
	}

	t.Run("score at threshold requires approval", func(t *testing.T) {
		ctx := build()
		NewRiskCheckHandler(decimal.NewFromInt(10000), 35).Handle(ctx)
		assert.True(t, ctx.RequiresManagerApproval)
		assert.Contains(t, ctx.ApprovalNotes, "high risk score detected: 35")
	})

	t.Run("score below threshold passes", func(t *testing.T) {
		ctx := build()
		NewRiskCheckHandler(decimal.NewFromInt(10000), 36).Handle(ctx)
		assert.False(t, ctx.RequiresManagerApproval)
	})
}

func TestRiskCheckHandler_WithdrawalRatio(t *testing.T) {
	account := restoredAccount(StatusActive, decimal.NewFromInt(2000))
	id := account.ID()
	tx := NewTransaction(TypeWithdraw, decimal.NewFromInt(1900), &id, nil)
	ctx := NewTransactionalContext(tx, account, nil)

	NewRiskCheckHandler(decimal.NewFromInt(10000), 70).Handle(ctx)

	// 1900/2000 = 0.95 draw ratio (+30) and a remainder of 100 is not below
	// the low-balance line, so no extra 20.
	assert.Equal(t, 30, *ctx.RiskScore)
}

func TestApprovalChain_BlocksAndResumes(t *testing.T) {
	ctx := newTransferContext(decimal.NewFromInt(12000), decimal.NewFromInt(12050), decimal.NewFromInt(50))

	chain := NewApprovalChain(decimal.NewFromInt(1000), decimal.NewFromInt(10000), 70)
	chain.Handle(ctx)

	assert.True(t, ctx.RequiresManagerApproval)
	assert.True(t, ctx.PendingApproval())
	assert.Equal(t, StatusPending, ctx.Transaction.Status(), "blocked transactions stay pending")

	ctx.Approve("manager-7")

	assert.False(t, ctx.RequiresManagerApproval)
	assert.False(t, ctx.PendingApproval())
	assert.Equal(t, "manager-7", ctx.ApprovedBy)
	assert.NotNil(t, ctx.ApprovedAt)
}

func TestApprovalChain_CleanTransactionPasses(t *testing.T) {
	ctx := newTransferContext(decimal.NewFromInt(2000), decimal.NewFromInt(100000), decimal.NewFromInt(5000))

	chain := NewApprovalChain(decimal.NewFromInt(1000), decimal.NewFromInt(10000), 70)
	chain.Handle(ctx)

	assert.False(t, ctx.RequiresManagerApproval)
	assert.NotNil(t, ctx.RiskScore)
	assert.Equal(t, 0, *ctx.RiskScore)
}
