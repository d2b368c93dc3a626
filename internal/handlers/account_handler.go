package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"ledger-service/internal/chart"
	"ledger-service/internal/models"
	"ledger-service/internal/services"
)

// LedgerAPI is the slice of the ledger service the handlers consume.
type LedgerAPI interface {
	CreateAccount(input services.AccountInput) (*models.LedgerAccount, error)
	ListAccounts() ([]models.LedgerAccount, error)
	AccountTree() (*chart.Tree, error)
}

type AccountHandler struct {
	ledger LedgerAPI
	logger *zap.Logger
}

func NewAccountHandler(ledger LedgerAPI, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{ledger: ledger, logger: logger}
}

// ListAccounts serves the flat chart of accounts, or the assembled
// tree (with integrity warnings) when ?tree=true.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("tree") == "true" {
		tree, err := h.ledger.AccountTree()
		if err != nil {
			respondWithDomainError(w, h.logger, err)
			return
		}
		respondWithData(w, http.StatusOK, tree)
		return
	}

	accounts, err := h.ledger.ListAccounts()
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, accounts)
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var input services.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	account, err := h.ledger.CreateAccount(input)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusCreated, account)
}
