package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Strategy defaults applied when an account carries no explicit configuration.
var (
	DefaultLoanInterestRate = decimal.NewFromFloat(0.05) // 5% annual
	DefaultLoanMinPayment   = decimal.NewFromInt(100)
)

// WithdrawStrategy encapsulates the withdrawal rules for an account type.
// Strategies are stateless; they mutate the account passed to them.
type WithdrawStrategy interface {
	Withdraw(account *IndividualAccount, amount decimal.Decimal) error
}

// DepositStrategy encapsulates the deposit rules for an account type.
type DepositStrategy interface {
	Deposit(account *IndividualAccount, amount decimal.Decimal) error
}

// InterestStrategy computes accrued interest on a principal amount.
type InterestStrategy interface {
	Calculate(principal decimal.Decimal) decimal.Decimal
}

// StandardAccountStrategy validates amounts against optional per-operation
// limits and mutates the balance directly. It serves as both withdraw and
// deposit strategy for standard accounts.
type StandardAccountStrategy struct {
	maxWithdrawal *decimal.Decimal
	maxDeposit    *decimal.Decimal
}

func NewStandardAccountStrategy(maxWithdrawal, maxDeposit *decimal.Decimal) *StandardAccountStrategy {
	return &StandardAccountStrategy{maxWithdrawal: maxWithdrawal, maxDeposit: maxDeposit}
}

func (s *StandardAccountStrategy) Withdraw(account *IndividualAccount, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{AccountID: account.ID(), Amount: amount}
	}
	if s.maxWithdrawal != nil && amount.GreaterThan(*s.maxWithdrawal) {
		return &LimitExceededError{AccountID: account.ID(), Operation: "withdraw", Amount: amount, Limit: *s.maxWithdrawal}
	}
	account.decreaseBalance(amount)
	account.touch()
	account.Metadata().IncrementCount("withdrawalCount")
	account.Metadata().SetTime("lastWithdrawal", time.Now())
	return nil
}

func (s *StandardAccountStrategy) Deposit(account *IndividualAccount, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{AccountID: account.ID(), Amount: amount}
	}
	if s.maxDeposit != nil && amount.GreaterThan(*s.maxDeposit) {
		return &LimitExceededError{AccountID: account.ID(), Operation: "deposit", Amount: amount, Limit: *s.maxDeposit}
	}
	account.increaseBalance(amount)
	account.touch()
	account.Metadata().IncrementCount("depositCount")
	account.Metadata().SetTime("lastDeposit", time.Now())
	return nil
}

// NoWithdrawStrategy denies every withdrawal, recording the attempt in the
// audit bag first.
type NoWithdrawStrategy struct{}

func (NoWithdrawStrategy) Withdraw(account *IndividualAccount, amount decimal.Decimal) error {
	md := account.Metadata()
	md.SetTime("lastWithdrawalAttempt", time.Now())
	md["lastWithdrawalAttemptAmount"] = amount.String()
	md["lastWithdrawalAttemptStatus"] = "DENIED"
	return &WithdrawalNotAllowedError{
		AccountID:   account.ID(),
		AccountType: account.Type(),
		Reason:      "account type does not allow withdrawals",
	}
}

// NoDepositStrategy denies every deposit, recording the attempt in the audit
// bag first.
type NoDepositStrategy struct{}

func (NoDepositStrategy) Deposit(account *IndividualAccount, amount decimal.Decimal) error {
	md := account.Metadata()
	md.SetTime("lastDepositAttempt", time.Now())
	md["lastDepositAttemptAmount"] = amount.String()
	md["lastDepositAttemptStatus"] = "DENIED"
	return &DepositNotAllowedError{
		AccountID:   account.ID(),
		AccountType: account.Type(),
		Reason:      "account type does not allow deposits",
	}
}

// LoanAccountStrategy accepts repayments on accounts whose negative balance
// represents outstanding debt. Payments settle accrued interest first, then
// principal; a payment beyond the outstanding principal is kept as a credit.
type LoanAccountStrategy struct {
	minPayment decimal.Decimal
}

func NewLoanAccountStrategy(minPayment decimal.Decimal) *LoanAccountStrategy {
	if minPayment.Sign() <= 0 {
		minPayment = DefaultLoanMinPayment
	}
	return &LoanAccountStrategy{minPayment: minPayment}
}

func (s *LoanAccountStrategy) Deposit(account *IndividualAccount, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return &InvalidAmountError{AccountID: account.ID(), Amount: amount}
	}
	if amount.LessThan(s.minPayment) {
		return &MinimumPaymentError{AccountID: account.ID(), Amount: amount, MinimumPayment: s.minPayment}
	}

	outstanding := s.RemainingBalance(account)
	if outstanding.IsZero() {
		return &DepositNotAllowedError{
			AccountID:   account.ID(),
			AccountType: account.Type(),
			Reason:      "loan account has no outstanding balance, deposits are only allowed for loan repayments",
		}
	}

	interestAccrued := account.Interest(outstanding)

	// Payment settles interest first, then principal.
	interestPaid := decimal.Min(amount, interestAccrued)
	principalPaid := amount.Sub(interestPaid)
	overpayment := decimal.Zero
	if principalPaid.GreaterThan(outstanding) {
		overpayment = principalPaid.Sub(outstanding)
		principalPaid = outstanding
	}
	account.increaseBalance(principalPaid.Add(overpayment))

	md := account.Metadata()
	md.AddDecimal("totalPaid", amount)
	md.AddDecimal("interestPaid", interestPaid)
	md.AddDecimal("principalPaid", principalPaid)
	md.AddDecimal("interestAccrued", interestAccrued)
	md.SetTime("lastPayment", time.Now())
	account.touch()
	return nil
}

// RemainingBalance reports the outstanding principal, zero once the loan is
// paid off.
func (s *LoanAccountStrategy) RemainingBalance(account *IndividualAccount) decimal.Decimal {
	balance := account.Balance()
	if balance.Sign() < 0 {
		return balance.Abs()
	}
	return decimal.Zero
}

// LoanInterestStrategy accrues simple interest at one twelfth of the annual
// rate. No compounding across periods is modeled.
type LoanInterestStrategy struct {
	rate decimal.Decimal
}

func NewLoanInterestStrategy(rate decimal.Decimal) *LoanInterestStrategy {
	if rate.Sign() <= 0 {
		rate = DefaultLoanInterestRate
	}
	return &LoanInterestStrategy{rate: rate}
}

func (s *LoanInterestStrategy) Calculate(principal decimal.Decimal) decimal.Decimal {
	return principal.Mul(s.rate).Div(decimal.NewFromInt(12))
}
