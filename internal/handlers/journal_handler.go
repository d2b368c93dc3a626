package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ledger-service/internal/models"
	"ledger-service/internal/services"
)

// JournalAPI is the slice of the ledger service driving journal entry
// CRUD and lifecycle transitions.
type JournalAPI interface {
	CreateEntry(input services.EntryInput) (*models.JournalEntry, error)
	UpdateEntry(id string, input services.EntryInput) (*models.JournalEntry, error)
	GetEntry(id string) (*models.JournalEntry, error)
	ListEntries(search string, limit int) ([]*models.JournalEntry, error)
	PostEntry(ctx context.Context, id string) (*models.JournalEntry, error)
	UnpostEntry(ctx context.Context, id string) (*models.JournalEntry, error)
	RejectEntry(id, reason string) (*models.JournalEntry, error)
	DeleteEntry(id string) error
	AuditTrail(entryID string) ([]models.AuditEvent, error)
}

type JournalHandler struct {
	journal JournalAPI
	logger  *zap.Logger
}

func NewJournalHandler(journal JournalAPI, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{journal: journal, logger: logger}
}

func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := h.journal.ListEntries(search, limit)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, entries)
}

func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.GetEntry(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, entry)
}

func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var input services.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	entry, err := h.journal.CreateEntry(input)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusCreated, entry)
}

func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var input services.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	entry, err := h.journal.UpdateEntry(mux.Vars(r)["id"], input)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, entry)
}

func (h *JournalHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.PostEntry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, entry)
}

func (h *JournalHandler) UnpostEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.UnpostEntry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, entry)
}

func (h *JournalHandler) RejectEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	entry, err := h.journal.RejectEntry(mux.Vars(r)["id"], body.Reason)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, entry)
}

func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteEntry(mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]string{"id": mux.Vars(r)["id"]})
}

func (h *JournalHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	events, err := h.journal.AuditTrail(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithData(w, http.StatusOK, events)
}
