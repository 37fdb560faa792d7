package domain

import (
	"github.com/shopspring/decimal"
)

// GroupAccount holds no balance of its own; its balance is always the sum of
// its members' balances at read time. The cached aggregate is an optimization
// only, never the source of truth.
type GroupAccount struct {
	accountBase
	groupName  string
	members    []*IndividualAccount
	aggregated decimal.Decimal
}

func (g *GroupAccount) GroupName() string             { return g.groupName }
func (g *GroupAccount) Members() []*IndividualAccount { return g.members }

// Balance recomputes the aggregate from live member balances.
func (g *GroupAccount) Balance() decimal.Decimal {
	if len(g.members) > 0 {
		sum := decimal.Zero
		for _, m := range g.members {
			sum = sum.Add(m.Balance())
		}
		g.aggregated = sum
	}
	return g.aggregated
}

// Deposit splits the amount evenly across all members and deposits each
// share. A non-positive amount or an empty member list is a no-op.
//
// A failure on one member propagates immediately; shares already deposited to
// earlier members are not rolled back here. Rollback is handled at the
// transaction level.
func (g *GroupAccount) Deposit(amount decimal.Decimal) error {
	if err := g.guardOperation("deposit"); err != nil {
		return err
	}
	if amount.Sign() <= 0 || len(g.members) == 0 {
		return nil
	}
	share := amount.Div(decimal.NewFromInt(int64(len(g.members))))
	for _, m := range g.members {
		if err := m.Deposit(share); err != nil {
			return err
		}
	}
	g.touch()
	g.Balance()
	return nil
}

// Withdraw splits the amount evenly across all members and withdraws each
// share. Same no-op and failure semantics as Deposit.
func (g *GroupAccount) Withdraw(amount decimal.Decimal) error {
	if err := g.guardOperation("withdraw"); err != nil {
		return err
	}
	if amount.Sign() <= 0 || len(g.members) == 0 {
		return nil
	}
	share := amount.Div(decimal.NewFromInt(int64(len(g.members))))
	for _, m := range g.members {
		if err := m.Withdraw(share); err != nil {
			return err
		}
	}
	g.touch()
	g.Balance()
	return nil
}

// Interest is not accrued at the group level.
func (g *GroupAccount) Interest(decimal.Decimal) decimal.Decimal { return decimal.Zero }
