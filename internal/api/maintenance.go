package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// MaintenanceHandler handles book maintenance endpoints.
type MaintenanceHandler struct {
	DB *sql.DB
}

type createMaintenanceRequest struct {
	BookID          int64  `json:"book_id"`
	MaintenanceDate string `json:"maintenance_date"`
	Description     string `json:"description"`
}

type updateMaintenanceRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// Create handles POST /api/maintenance.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMaintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BookID == 0 {
		jsonError(w, http.StatusBadRequest, "book_id required")
		return
	}

	record, err := store.CreateMaintenance(r.Context(), h.DB, req.BookID, req.MaintenanceDate, req.Description)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, record)
}

// List handles GET /api/maintenance.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListMaintenance(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list maintenance records")
		return
	}
	if records == nil {
		records = []model.Maintenance{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Get handles GET /api/maintenance/{id}.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid maintenance id")
		return
	}

	record, err := store.GetMaintenance(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get maintenance record")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "maintenance record not found")
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// UpdateStatus handles POST /api/maintenance/{id}/status.
func (h *MaintenanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid maintenance id")
		return
	}

	var req updateMaintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := store.UpdateMaintenanceStatus(r.Context(), h.DB, id, model.MaintenanceStatus(req.Status), req.Notes)
	if err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("maintenance status updated", "user", claims.Username,
		"book", record.BookTitle, "status", record.Status)
	jsonResponse(w, http.StatusOK, record)
}

// BookHistory handles GET /api/maintenance/book/{bookId}.
func (h *MaintenanceHandler) BookHistory(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("bookId"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	records, err := store.GetBookMaintenanceHistory(r.Context(), h.DB, bookID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get maintenance history")
		return
	}
	if records == nil {
		records = []model.Maintenance{}
	}
	jsonResponse(w, http.StatusOK, records)
}
