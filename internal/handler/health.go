package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"banking-ledger/internal/model"
)

type HealthHandler struct {
	db      *sql.DB
	version string
}

func NewHealthHandler(db *sql.DB, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
		return
	}

	response := model.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Database:  h.checkDatabase(),
	}

	w.Header().Set("Content-Type", "application/json")
	if response.Database.Status != "healthy" {
		response.Status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}

func (h *HealthHandler) checkDatabase() model.DatabaseHealth {
	dbHealth := model.DatabaseHealth{
		Status: "unhealthy",
	}
	if h.db == nil {
		return dbHealth
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return dbHealth
	}

	dbHealth.Status = "healthy"
	return dbHealth
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := model.ErrorResponse{
		Error: message,
		Code:  code,
	}
	json.NewEncoder(w).Encode(response)
}
