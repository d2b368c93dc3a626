package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ledger-service/internal/services"
)

// SetupRouter builds the HTTP surface: health and metrics at the root,
// the versioned API underneath /api/v1.
func SetupRouter(ledger *services.LedgerService, recon *services.ReconciliationService, logger *zap.Logger) *mux.Router {
	registerMetrics()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware(logger))
	api.Use(metricsMiddleware)

	accounts := NewAccountHandler(ledger, logger)
	api.HandleFunc("/accounts", accounts.ListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts", accounts.CreateAccount).Methods(http.MethodPost)

	journal := NewJournalHandler(ledger, logger)
	api.HandleFunc("/journal-entries", journal.ListEntries).Methods(http.MethodGet)
	api.HandleFunc("/journal-entries", journal.CreateEntry).Methods(http.MethodPost)
	api.HandleFunc("/journal-entries/{id}", journal.GetEntry).Methods(http.MethodGet)
	api.HandleFunc("/journal-entries/{id}", journal.UpdateEntry).Methods(http.MethodPut)
	api.HandleFunc("/journal-entries/{id}", journal.DeleteEntry).Methods(http.MethodDelete)
	api.HandleFunc("/journal-entries/{id}/post", journal.PostEntry).Methods(http.MethodPost)
	api.HandleFunc("/journal-entries/{id}/unpost", journal.UnpostEntry).Methods(http.MethodPost)
	api.HandleFunc("/journal-entries/{id}/reject", journal.RejectEntry).Methods(http.MethodPost)
	api.HandleFunc("/journal-entries/{id}/audit", journal.AuditTrail).Methods(http.MethodGet)

	reconciliation := NewReconciliationHandler(recon, logger)
	api.HandleFunc("/banking/accounts/{id}/reconciliation", reconciliation.GetReconciliation).Methods(http.MethodGet)
	api.HandleFunc("/banking/accounts/{id}/statements", reconciliation.ImportStatement).Methods(http.MethodPost)

	return router
}

func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
