package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// ReturnsPage handles GET /returns and GET /returns/search.
func (s *Server) ReturnsPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	var borrowings []model.Borrowing
	var err error
	if query != "" {
		borrowings, err = store.SearchActiveBorrowings(r.Context(), s.DB, query)
	} else {
		borrowings, err = store.ListActiveBorrowings(r.Context(), s.DB)
	}
	if err != nil {
		slog.Error("failed to list returns", "error", err)
	}

	s.Templates.Render(w, "returns.html", &struct {
		PageData
		Borrowings []model.Borrowing
		Query      string
	}{
		PageData:   s.pageData(w, r, "Vračila"),
		Borrowings: borrowings,
		Query:      query,
	})
}

// ReturnProcessSubmit handles POST /returns/process/{id}.
func (s *Server) ReturnProcessSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	notes := r.FormValue("condition_notes")

	borrowing, err := store.ProcessReturn(r.Context(), s.DB, id, notes)
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to process return", "error", err)
		}
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, "/returns", http.StatusSeeOther)
		return
	}

	slog.Info("return processed", "user", claims.Username,
		"book", borrowing.BookTitle, "member", borrowing.MemberName)
	setFlash(w, flashSuccess, "Vračilo uspešno zabeleženo.")
	http.Redirect(w, r, "/returns", http.StatusSeeOther)
}

// ReturnsHistoryPage handles GET /returns/history.
func (s *Server) ReturnsHistoryPage(w http.ResponseWriter, r *http.Request) {
	history, err := store.ListReturnHistory(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list return history", "error", err)
	}

	s.Templates.Render(w, "returns_history.html", &struct {
		PageData
		Borrowings []model.Borrowing
	}{
		PageData:   s.pageData(w, r, "Zgodovina vračil"),
		Borrowings: history,
	})
}
