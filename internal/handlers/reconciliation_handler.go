package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ledger-service/internal/models"
	"ledger-service/internal/repositories"
	"ledger-service/internal/services"
)

// ReconciliationAPI computes reconciliation records and imports bank
// statements.
type ReconciliationAPI interface {
	ImportStatement(bankAccountID int64, input services.StatementInput) (*models.BankStatement, error)
	GetReconciliation(bankAccountID int64) (*models.ReconciliationRecord, error)
}

type ReconciliationHandler struct {
	reconciliation ReconciliationAPI
	logger         *zap.Logger
}

func NewReconciliationHandler(reconciliation ReconciliationAPI, logger *zap.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliation: reconciliation, logger: logger}
}

func bankAccountID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// GetReconciliation serves the derived record for a bank account. A
// missing statement is "no data yet", reported as 404 with success
// still false but no error banner semantics attached.
func (h *ReconciliationHandler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	id, err := bankAccountID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "bank account id must be an integer")
		return
	}

	record, err := h.reconciliation.GetReconciliation(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "no statement found for this account")
			return
		}
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, record)
}

func (h *ReconciliationHandler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	id, err := bankAccountID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "bank account id must be an integer")
		return
	}

	var input services.StatementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	statement, err := h.reconciliation.ImportStatement(id, input)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusCreated, statement)
}
