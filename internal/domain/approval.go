package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ApprovalHandler is one link in the chain of responsibility deciding whether
// a transaction may execute immediately or must wait for manual approval.
// The chain stops advancing once a context requires approval that has not
// been granted.
type ApprovalHandler interface {
	SetNext(next ApprovalHandler)
	Handle(ctx *TransactionalContext)
}

// nextHandler carries the chain link shared by all handlers.
type nextHandler struct {
	next ApprovalHandler
}

func (h *nextHandler) SetNext(next ApprovalHandler) { h.next = next }

func (h *nextHandler) forward(ctx *TransactionalContext) {
	if !ctx.RequiresManagerApproval && h.next != nil {
		h.next.Handle(ctx)
	}
}

// SmallTransactionHandler auto-approves transactions at or below its
// threshold: it clears any approval requirement and stops the chain.
type SmallTransactionHandler struct {
	nextHandler
	threshold decimal.Decimal
}

func NewSmallTransactionHandler(threshold decimal.Decimal) *SmallTransactionHandler {
	return &SmallTransactionHandler{threshold: threshold}
}

func (h *SmallTransactionHandler) Handle(ctx *TransactionalContext) {
	if ctx.Transaction.Amount().LessThanOrEqual(h.threshold) {
		ctx.ClearManagerApprovalRequirement()
		return
	}
	h.forward(ctx)
}

// Risk scoring constants on the 0-100 additive scale.
const (
	riskHighAmount    = 40
	riskMediumAmount  = 20
	riskHighDrawRatio = 30
	riskLowRemainder  = 20
	riskPoorTarget    = 15
)

var (
	riskLowBalanceLine   = decimal.NewFromInt(100)
	riskLargeAmountLine  = decimal.NewFromInt(5000)
	riskDrawRatioCeiling = decimal.NewFromFloat(0.8)
)

// RiskCheckHandler computes an additive risk score for the transaction and
// requires manager approval when the score reaches its threshold.
type RiskCheckHandler struct {
	nextHandler
	highRiskThreshold  decimal.Decimal
	riskScoreThreshold int
}

func NewRiskCheckHandler(highRiskThreshold decimal.Decimal, riskScoreThreshold int) *RiskCheckHandler {
	return &RiskCheckHandler{highRiskThreshold: highRiskThreshold, riskScoreThreshold: riskScoreThreshold}
}

func (h *RiskCheckHandler) Handle(ctx *TransactionalContext) {
	tx := ctx.Transaction
	amount := tx.Amount()

	score := 0

	// Amount-based risk: the two bands are mutually exclusive, larger wins.
	if amount.GreaterThan(h.highRiskThreshold) {
		score += riskHighAmount
	} else if amount.GreaterThan(h.highRiskThreshold.Div(decimal.NewFromInt(2))) {
		score += riskMediumAmount
	}

	// Source-account risk for withdrawals and transfers.
	if ctx.FromAccount != nil && (tx.Type() == TypeWithdraw || tx.Type() == TypeTransfer) {
		balance := ctx.FromAccount.Balance()
		if balance.Sign() > 0 && amount.Div(balance).GreaterThan(riskDrawRatioCeiling) {
			score += riskHighDrawRatio
		}
		if balance.Sub(amount).LessThan(riskLowBalanceLine) {
			score += riskLowRemainder
		}
	}

	// Large transfers into near-empty target accounts.
	if tx.Type() == TypeTransfer && ctx.ToAccount != nil {
		if ctx.ToAccount.Balance().LessThan(riskLowBalanceLine) && amount.GreaterThan(riskLargeAmountLine) {
			score += riskPoorTarget
		}
	}

	ctx.RiskScore = &score

	if score >= h.riskScoreThreshold {
		ctx.MarkForManagerApproval(fmt.Sprintf(
			"high risk score detected: %d, transaction requires manager approval", score))
	}

	h.forward(ctx)
}

// ManagerApprovalHandler terminates the chain. If approval is required and
// not yet granted the context stays blocked; the calling service must check
// PendingApproval and persist the context instead of executing.
type ManagerApprovalHandler struct {
	nextHandler
}

func NewManagerApprovalHandler() *ManagerApprovalHandler { return &ManagerApprovalHandler{} }

func (h *ManagerApprovalHandler) Handle(ctx *TransactionalContext) {
	if ctx.PendingApproval() {
		return
	}
	h.forward(ctx)
}

// NewApprovalChain builds the default Small -> Risk -> ManagerApproval chain.
func NewApprovalChain(smallThreshold, highRiskThreshold decimal.Decimal, riskScoreThreshold int) ApprovalHandler {
	small := NewSmallTransactionHandler(smallThreshold)
	risk := NewRiskCheckHandler(highRiskThreshold, riskScoreThreshold)
	manager := NewManagerApprovalHandler()
	small.SetNext(risk)
	risk.SetNext(manager)
	return small
}
