package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"banking-ledger/internal/model"
	"banking-ledger/internal/service"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// CreateAccount handles POST /v1/accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return
	}

	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeInvalidInput)
		return
	}

	response, err := h.accountService.CreateAccount(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, response)
}

// CreateGroupAccount handles POST /v1/accounts/groups
func (h *AccountHandler) CreateGroupAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return
	}

	var req model.CreateGroupAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeInvalidInput)
		return
	}

	response, err := h.accountService.CreateGroupAccount(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, response)
}

// GetAccount handles GET /v1/accounts/{id}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return
	}

	accountID, ok := accountIDFromPath(w, r.URL.Path, "")
	if !ok {
		return
	}

	response, err := h.accountService.GetAccount(r.Context(), accountID, r.URL.Query().Get("owner_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, response)
}

// SuspendAccount handles POST /v1/accounts/{id}/suspend
func (h *AccountHandler) SuspendAccount(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "/suspend", h.accountService.SuspendAccount)
}

// CloseAccount handles POST /v1/accounts/{id}/close
func (h *AccountHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "/close", h.accountService.CloseAccount)
}

func (h *AccountHandler) lifecycle(
	w http.ResponseWriter, r *http.Request, suffix string,
	apply func(ctx context.Context, id uuid.UUID, ownerID string) (*model.AccountResponse, error),
) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return
	}

	accountID, ok := accountIDFromPath(w, r.URL.Path, suffix)
	if !ok {
		return
	}

	response, err := apply(r.Context(), accountID, r.URL.Query().Get("owner_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, response)
}

// accountIDFromPath extracts the account ID segment from paths of the form
// /v1/accounts/{id}[suffix], writing the error response itself on failure.
func accountIDFromPath(w http.ResponseWriter, path, suffix string) (uuid.UUID, bool) {
	path = strings.TrimPrefix(path, "/v1/accounts/")
	if suffix != "" {
		path = strings.TrimSuffix(path, suffix)
	}
	if path == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Account ID is required", model.ErrCodeInvalidInput)
		return uuid.Nil, false
	}

	accountID, err := uuid.Parse(path)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid account ID format", model.ErrCodeInvalidInput)
		return uuid.Nil, false
	}
	return accountID, true
}

// handleServiceError converts service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	if serviceErr, ok := err.(*service.ServiceError); ok {
		switch serviceErr.Code {
		case model.ErrCodeNotFound:
			writeErrorResponse(w, http.StatusNotFound, serviceErr.Message, serviceErr.Code)
		case model.ErrCodeValidation, model.ErrCodeInvalidInput:
			writeErrorResponse(w, http.StatusBadRequest, serviceErr.Message, serviceErr.Code)
		case model.ErrCodeInsufficientFunds, model.ErrCodeLimitExceeded,
			model.ErrCodeOperationDenied, model.ErrCodeAccountState,
			model.ErrCodeGatewayDeclined, model.ErrCodeExecutionFailed:
			writeErrorResponse(w, http.StatusUnprocessableEntity, serviceErr.Message, serviceErr.Code)
		case model.ErrCodeForbidden:
			writeErrorResponse(w, http.StatusForbidden, serviceErr.Message, serviceErr.Code)
		case model.ErrCodeConflict:
			writeErrorResponse(w, http.StatusConflict, serviceErr.Message, serviceErr.Code)
		default:
			writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", model.ErrCodeInternalError)
		}
		return
	}

	// Unknown error
	writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", model.ErrCodeInternalError)
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
