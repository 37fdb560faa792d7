package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"banking-ledger/internal/model"
	"banking-ledger/internal/service"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Deposit handles POST /v1/transactions/deposit
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.DepositRequest
	if !decodePost(w, r, &req) {
		return
	}

	response, err := h.transactionService.Deposit(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, response)
}

// Withdraw handles POST /v1/transactions/withdraw
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req model.WithdrawRequest
	if !decodePost(w, r, &req) {
		return
	}

	response, err := h.transactionService.Withdraw(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, response)
}

// Transfer handles POST /v1/transactions/transfer
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if !decodePost(w, r, &req) {
		return
	}

	response, err := h.transactionService.Transfer(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, response)
}

// Approve handles POST /v1/transactions/approve
func (h *TransactionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req model.ApproveTransactionRequest
	if !decodePost(w, r, &req) {
		return
	}

	response, err := h.transactionService.Approve(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, response)
}

// GetTransaction handles GET /v1/transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/transactions/")
	if path == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Transaction ID is required", model.ErrCodeInvalidInput)
		return
	}

	transactionID, err := uuid.Parse(path)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid transaction ID format", model.ErrCodeInvalidInput)
		return
	}

	response, err := h.transactionService.GetTransaction(r.Context(), transactionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, response)
}

// GetAccountLedger handles GET /v1/accounts/{id}/ledger
func (h *TransactionHandler) GetAccountLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return
	}

	accountID, ok := accountIDFromPath(w, r.URL.Path, "/ledger")
	if !ok {
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		if limit, err = strconv.Atoi(limitStr); err != nil || limit <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid limit parameter", model.ErrCodeInvalidInput)
			return
		}
	}

	entries, err := h.transactionService.GetAccountLedger(r.Context(), accountID, r.URL.Query().Get("owner_id"), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response := map[string]any{
		"account_id": accountID,
		"entries":    entries,
		"count":      len(entries),
	}
	writeJSONResponse(w, http.StatusOK, response)
}

// decodePost enforces the POST method and decodes the JSON body, writing the
// error response itself on failure.
func decodePost(w http.ResponseWriter, r *http.Request, into any) bool {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeInvalidInput)
		return false
	}
	return true
}
