package domain

import (
	"github.com/shopspring/decimal"
)

// Decorators wrap an Account to adjust withdraw/deposit amounts before
// forwarding to the wrapped account, whose own state and strategy checks
// still apply. Decorators compose: wrapping a wrapped account stacks the
// adjustments. Balance and Interest pass through unchanged.

// decoratedAccount embeds the wrapped Account so every method not overridden
// by a concrete decorator delegates to it.
type decoratedAccount struct {
	Account
}

// Unwrap exposes the wrapped account, letting callers peel decorators back
// to the underlying aggregate.
func (d *decoratedAccount) Unwrap() Account { return d.Account }

// OverdraftAccount allows withdrawals up to balance plus a fixed overdraft
// limit.
type OverdraftAccount struct {
	decoratedAccount
	limit decimal.Decimal
}

func NewOverdraftAccount(inner Account, limit decimal.Decimal) *OverdraftAccount {
	inner.Metadata()["overdraftLimit"] = limit.String()
	return &OverdraftAccount{decoratedAccount: decoratedAccount{inner}, limit: limit}
}

func (d *OverdraftAccount) Withdraw(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{AccountID: d.ID(), Amount: amount}
	}
	balance := d.Account.Balance()
	if balance.Add(d.limit).LessThan(amount) {
		return &InsufficientFundsError{
			AccountID: d.ID(),
			Balance:   balance,
			Requested: amount,
			Reason:    "amount exceeds balance plus overdraft limit",
		}
	}
	return d.Account.Withdraw(amount)
}

// InsuranceAccount grosses withdrawals up by an insurance fee before
// forwarding.
type InsuranceAccount struct {
	decoratedAccount
	feePercent decimal.Decimal
}

func NewInsuranceAccount(inner Account, feePercent decimal.Decimal) *InsuranceAccount {
	inner.Metadata()["insured"] = "true"
	inner.Metadata()["insuranceFeePercent"] = feePercent.String()
	return &InsuranceAccount{decoratedAccount: decoratedAccount{inner}, feePercent: feePercent}
}

func (d *InsuranceAccount) Withdraw(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{AccountID: d.ID(), Amount: amount}
	}
	withFee := amount.Mul(decimal.NewFromInt(1).Add(d.feePercent))
	return d.Account.Withdraw(withFee)
}

// PremiumAccount credits a bonus on deposits and charges a fee on
// withdrawals.
type PremiumAccount struct {
	decoratedAccount
	depositBonusPercent decimal.Decimal
	withdrawFeePercent  decimal.Decimal
}

func NewPremiumAccount(inner Account, depositBonusPercent, withdrawFeePercent decimal.Decimal) *PremiumAccount {
	inner.Metadata()["premium"] = "true"
	inner.Metadata()["premiumDepositBonusPercent"] = depositBonusPercent.String()
	inner.Metadata()["premiumWithdrawFeePercent"] = withdrawFeePercent.String()
	return &PremiumAccount{
		decoratedAccount:    decoratedAccount{inner},
		depositBonusPercent: depositBonusPercent,
		withdrawFeePercent:  withdrawFeePercent,
	}
}

func (d *PremiumAccount) Deposit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{AccountID: d.ID(), Amount: amount}
	}
	withBonus := amount.Mul(decimal.NewFromInt(1).Add(d.depositBonusPercent))
	return d.Account.Deposit(withBonus)
}

func (d *PremiumAccount) Withdraw(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{AccountID: d.ID(), Amount: amount}
	}
	withFee := amount.Mul(decimal.NewFromInt(1).Add(d.withdrawFeePercent))
	return d.Account.Withdraw(withFee)
}
