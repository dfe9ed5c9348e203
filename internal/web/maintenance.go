package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// MaintenancePage handles GET /maintenance.
func (s *Server) MaintenancePage(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListMaintenance(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list maintenance", "error", err)
	}

	s.Templates.Render(w, "maintenance.html", &struct {
		PageData
		Records []model.Maintenance
	}{
		PageData: s.pageData(w, r, "Vzdrževanje"),
		Records:  records,
	})
}

// MaintenanceNewPage handles GET /maintenance/new.
func (s *Server) MaintenanceNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderMaintenanceForm(w, r, s.pageData(w, r, "Novo vzdrževanje"), nil)
}

func (s *Server) renderMaintenanceForm(w http.ResponseWriter, r *http.Request, pd PageData, form map[string]string) {
	books, err := store.ListBooks(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list books", "error", err)
	}

	if form == nil {
		form = map[string]string{
			"maintenance_date": time.Now().Format(model.DateFormat),
		}
	}

	s.Templates.Render(w, "maintenance_new.html", &struct {
		PageData
		Books []model.Book
		Form  map[string]string
	}{
		PageData: pd,
		Books:    books,
		Form:     form,
	})
}

// MaintenanceCreateSubmit handles POST /maintenance/new.
func (s *Server) MaintenanceCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	bookID, _ := strconv.ParseInt(r.FormValue("book_id"), 10, 64)
	date := r.FormValue("maintenance_date")
	description := r.FormValue("description")

	record, err := store.CreateMaintenance(r.Context(), s.DB, bookID, date, description)
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to create maintenance record", "error", err)
		}
		pd := s.pageData(w, r, "Novo vzdrževanje")
		pd.Error = userMessage(err)
		s.renderMaintenanceForm(w, r, pd, map[string]string{
			"book_id":          r.FormValue("book_id"),
			"maintenance_date": date,
			"description":      description,
		})
		return
	}

	slog.Info("maintenance record created", "user", claims.Username, "book", record.BookTitle)
	setFlash(w, flashSuccess, "Zapis o vzdrževanju dodan.")
	http.Redirect(w, r, fmt.Sprintf("/maintenance/%d", record.ID), http.StatusSeeOther)
}

// MaintenanceDetailPage handles GET /maintenance/{id}.
func (s *Server) MaintenanceDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	record, err := store.GetMaintenance(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get maintenance record", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.NotFound(w, r)
		return
	}

	s.Templates.Render(w, "maintenance_detail.html", &struct {
		PageData
		Record *model.Maintenance
	}{
		PageData: s.pageData(w, r, "Vzdrževanje"),
		Record:   record,
	})
}

// MaintenanceUpdateSubmit handles POST /maintenance/{id}/update.
func (s *Server) MaintenanceUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	status := model.MaintenanceStatus(r.FormValue("status"))
	notes := r.FormValue("notes")

	record, err := store.UpdateMaintenanceStatus(r.Context(), s.DB, id, status, notes)
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to update maintenance status", "error", err)
		}
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, fmt.Sprintf("/maintenance/%d", id), http.StatusSeeOther)
		return
	}

	slog.Info("maintenance status updated", "user", claims.Username,
		"book", record.BookTitle, "status", record.Status)
	setFlash(w, flashSuccess, "Status vzdrževanja posodobljen.")
	http.Redirect(w, r, fmt.Sprintf("/maintenance/%d", id), http.StatusSeeOther)
}

// MaintenanceHistoryPage handles GET /maintenance/history/{bookId}.
func (s *Server) MaintenanceHistoryPage(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("bookId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	book, err := store.GetBook(r.Context(), s.DB, bookID)
	if err != nil {
		slog.Error("failed to get book", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if book == nil {
		http.NotFound(w, r)
		return
	}

	records, err := store.GetBookMaintenanceHistory(r.Context(), s.DB, bookID)
	if err != nil {
		slog.Error("failed to list maintenance history", "error", err)
	}

	s.Templates.Render(w, "maintenance_history.html", &struct {
		PageData
		Book    *model.Book
		Records []model.Maintenance
	}{
		PageData: s.pageData(w, r, "Zgodovina vzdrževanja"),
		Book:     book,
		Records:  records,
	})
}
