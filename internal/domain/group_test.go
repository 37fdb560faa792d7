package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGroupAccount_BalanceAggregatesMembers(t *testing.T) {
	group := newGroup(decimal.NewFromInt(100), decimal.NewFromInt(250), decimal.NewFromInt(50))

	assert.Equal(t, "400", group.Balance().String())

	// A direct member deposit is reflected in the next group read.
	assert.NoError(t, group.Members()[0].Deposit(decimal.NewFromInt(100)))
	assert.Equal(t, "500", group.Balance().String())
}

func TestGroupAccount_DepositSplitsEvenly(t *testing.T) {
	tests := []struct {
		name         string
		balances     []int64
		amount       decimal.Decimal
		wantBalances []string
	}{
		{
			name:         "even split across two members",
			balances:     []int64{0, 0},
			amount:       decimal.NewFromInt(100),
			wantBalances: []string{"50", "50"},
		},
		{
			name:         "uneven division across three members",
			balances:     []int64{0, 0, 0},
			amount:       decimal.NewFromInt(100),
			wantBalances: []string{"33.3333333333333333", "33.3333333333333333", "33.3333333333333333"},
		},
		{
			name:         "single member receives everything",
			balances:     []int64{10},
			amount:       decimal.NewFromInt(90),
			wantBalances: []string{"100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := make([]decimal.Decimal, len(tt.balances))
			for i, b := range tt.balances {
				initial[i] = decimal.NewFromInt(b)
			}
			group := newGroup(initial...)

			assert.NoError(t, group.Deposit(tt.amount))

			for i, want := range tt.wantBalances {
				assert.Equal(t, want, group.Members()[i].Balance().String(), "member %d", i)
			}
		})
	}
}

func TestGroupAccount_WithdrawSplitsEvenly(t *testing.T) {
	group := newGroup(decimal.NewFromInt(100), decimal.NewFromInt(100))

	assert.NoError(t, group.Withdraw(decimal.NewFromInt(60)))

	assert.Equal(t, "70", group.Members()[0].Balance().String())
	assert.Equal(t, "70", group.Members()[1].Balance().String())
	assert.Equal(t, "140", group.Balance().String())
}

func TestGroupAccount_NoOpCases(t *testing.T) {
	t.Run("non-positive amount", func(t *testing.T) {
		group := newGroup(decimal.NewFromInt(100))
		assert.NoError(t, group.Deposit(decimal.Zero))
		assert.NoError(t, group.Withdraw(decimal.NewFromInt(-5)))
		assert.Equal(t, "100", group.Balance().String())
	})

	t.Run("no members", func(t *testing.T) {
		group := NewGroupAccount("owner-1", "empty", TypeStandard, nil)
		assert.NoError(t, group.Deposit(decimal.NewFromInt(100)))
		assert.True(t, group.Balance().IsZero())
	})
}

func TestGroupAccount_MemberFailureStopsLoop(t *testing.T) {
	// The second member is suspended; its share fails and later members are
	// not reached, while the first member keeps its share.
	ok1 := restoredAccount(StatusActive, decimal.NewFromInt(100))
	bad := restoredAccount(StatusSuspended, decimal.NewFromInt(100))
	ok2 := restoredAccount(StatusActive, decimal.NewFromInt(100))
	group := NewGroupAccount("owner-1", "team", TypeStandard, []*IndividualAccount{ok1, bad, ok2})

	err := group.Deposit(decimal.NewFromInt(90))

	var notActive *AccountNotActiveError
	assert.ErrorAs(t, err, &notActive)
	assert.Equal(t, "130", ok1.Balance().String())
	assert.Equal(t, "100", bad.Balance().String())
	assert.Equal(t, "100", ok2.Balance().String())
}

func TestGroupAccount_LifecycleGate(t *testing.T) {
	group := newGroup(decimal.NewFromInt(100))
	assert.NoError(t, group.Suspend())

	err := group.Deposit(decimal.NewFromInt(10))
	var notActive *AccountNotActiveError
	assert.ErrorAs(t, err, &notActive)
	assert.Equal(t, "100", group.Members()[0].Balance().String())
}

func TestGroupAccount_SnapshotRestore(t *testing.T) {
	group := newGroup(decimal.NewFromInt(100), decimal.NewFromInt(200))
	snap := group.Snapshot()

	assert.True(t, snap.IsGroup)
	assert.Equal(t, "300", snap.Balance.String())

	restored := RestoreGroupAccount(snap, group.Members())
	assert.Equal(t, group.ID(), restored.ID())
	assert.Equal(t, group.GroupName(), restored.GroupName())
	assert.Equal(t, "300", restored.Balance().String())
}

func newGroup(balances ...decimal.Decimal) *GroupAccount {
	members := make([]*IndividualAccount, 0, len(balances))
	for _, b := range balances {
		members = append(members, restoredAccount(StatusActive, b))
	}
	return NewGroupAccount("owner-1", "team", TypeStandard, members)
}
