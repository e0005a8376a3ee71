// Package handlers holds the HTTP adapters for the operator surface:
// spreadsheet uploads, store clearing, and the WhatsApp webhook.
package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/observability/metrics"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/promo"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/sheet"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/storage"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

const maxUploadBytes = 10 << 20

// Admin bundles the operator endpoints around the appointment and
// status stores.
type Admin struct {
	store   *appointments.Store
	status  *storage.StatusStore
	seen    *storage.SeenStore
	promo   *promo.Notifier
	metrics *metrics.Metrics
	logger  *logging.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewAdmin wires the operator endpoints. promo and metrics may be nil.
func NewAdmin(store *appointments.Store, status *storage.StatusStore, seen *storage.SeenStore, notifier *promo.Notifier, m *metrics.Metrics, loc *time.Location, logger *logging.Logger) *Admin {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Admin{
		store:   store,
		status:  status,
		seen:    seen,
		promo:   notifier,
		metrics: m,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
	}
}

// UploadAppointments ingests an xlsx of appointment rows, merges it into
// the live store, and triggers hook messages when genuinely new phones
// arrived.
func (a *Admin) UploadAppointments(w http.ResponseWriter, r *http.Request) {
	batchID := uuid.NewString()
	file, err := uploadedFile(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	batch, err := sheet.ParseAppointments(file, a.loc, a.logger, a.now)
	if err != nil {
		a.metrics.ObserveImport("error")
		a.respondError(w, http.StatusUnprocessableEntity, err)
		return
	}

	res, err := a.store.ImportMerge(r.Context(), batch, a.seen)
	if err != nil {
		// The merge itself succeeded in memory; only persistence failed.
		a.logger.Error("handlers: import persisted with errors", "batch_id", batchID, "error", err)
	}
	a.metrics.ObserveImport("ok")
	a.logger.Info("handlers: appointments imported",
		"batch_id", batchID, "added", res.Added, "kept", res.Kept, "total", res.Total)

	if a.promo != nil {
		a.promo.Announce(r.Context(), res.NewPhones)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"batch_id":   batchID,
		"added":      res.Added,
		"kept":       res.Kept,
		"total":      res.Total,
		"new_phones": len(res.NewPhones),
	})
}

// UploadStatus replaces the persisted status list from an xlsx of
// name/phone/status rows.
func (a *Admin) UploadStatus(w http.ResponseWriter, r *http.Request) {
	file, err := uploadedFile(r)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	records, err := sheet.ParseStatusRecords(file)
	if err != nil {
		a.respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := a.status.Replace(records); err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": len(records)})
}

// ListAppointments returns the current store contents, time-sorted.
func (a *Admin) ListAppointments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.store.List())
}

// ClearAppointments empties the appointment store and its spreadsheet.
func (a *Admin) ClearAppointments(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Clear(r.Context()); err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}
	a.logger.Info("handlers: appointments cleared")
	respondJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

// ClearStatus empties the persisted status list.
func (a *Admin) ClearStatus(w http.ResponseWriter, r *http.Request) {
	if err := a.status.Clear(); err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}
	a.logger.Info("handlers: status records cleared")
	respondJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func uploadedFile(r *http.Request) (multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	return file, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *Admin) respondError(w http.ResponseWriter, status int, err error) {
	a.logger.Error("handlers: request failed", "status", status, "error", err)
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
