package service

import (
	"github.com/pkg/errors"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/model"
	"banking-ledger/internal/repository"
)

// ServiceError represents a service-level error
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// serviceErrorFrom maps domain and repository errors onto service error codes.
// Unrecognized errors pass through unchanged so they surface as internal
// errors at the transport layer.
func serviceErrorFrom(err error) error {
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		return &ServiceError{Code: model.ErrCodeNotFound, Message: "Account not found"}
	case errors.Is(err, repository.ErrTransactionNotFound):
		return &ServiceError{Code: model.ErrCodeNotFound, Message: "Transaction not found"}
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return &ServiceError{Code: model.ErrCodeConflict, Message: "Account was modified concurrently, retry the operation"}
	}

	var (
		insufficientFunds  *domain.InsufficientFundsError
		limitExceeded      *domain.LimitExceededError
		withdrawNotAllowed *domain.WithdrawalNotAllowedError
		depositNotAllowed  *domain.DepositNotAllowedError
		notActive          *domain.AccountNotActiveError
		closed             *domain.AccountClosedError
		badTransition      *domain.InvalidStateTransitionError
		invalidAmount      *domain.InvalidAmountError
		minimumPayment     *domain.MinimumPaymentError
		badTxAmount        *domain.InvalidTransactionAmountError
		badTxState         *domain.InvalidTransactionStateError
		sameAccount        *domain.SameAccountTransferError
		unauthorized       *domain.UnauthorizedAccountAccessError
		execution          *domain.ExecutionError
	)
	switch {
	case errors.As(err, &insufficientFunds):
		return &ServiceError{Code: model.ErrCodeInsufficientFunds, Message: err.Error()}
	case errors.As(err, &limitExceeded):
		return &ServiceError{Code: model.ErrCodeLimitExceeded, Message: err.Error()}
	case errors.As(err, &withdrawNotAllowed), errors.As(err, &depositNotAllowed):
		return &ServiceError{Code: model.ErrCodeOperationDenied, Message: err.Error()}
	case errors.As(err, &notActive), errors.As(err, &closed), errors.As(err, &badTransition):
		return &ServiceError{Code: model.ErrCodeAccountState, Message: err.Error()}
	case errors.As(err, &invalidAmount), errors.As(err, &minimumPayment),
		errors.As(err, &badTxAmount), errors.As(err, &sameAccount):
		return &ServiceError{Code: model.ErrCodeValidation, Message: err.Error()}
	case errors.As(err, &badTxState):
		return &ServiceError{Code: model.ErrCodeConflict, Message: err.Error()}
	case errors.As(err, &unauthorized):
		return &ServiceError{Code: model.ErrCodeForbidden, Message: err.Error()}
	case errors.As(err, &execution):
		return &ServiceError{Code: model.ErrCodeExecutionFailed, Message: err.Error()}
	}
	return err
}

func validationError(err error) error {
	if validationErr, ok := err.(*model.ValidationError); ok {
		return &ServiceError{Code: model.ErrCodeValidation, Message: validationErr.Message}
	}
	return err
}
