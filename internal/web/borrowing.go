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

// BorrowingsPage handles GET /borrowing.
func (s *Server) BorrowingsPage(w http.ResponseWriter, r *http.Request) {
	borrowings, err := store.ListActiveBorrowings(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list borrowings", "error", err)
	}

	s.Templates.Render(w, "borrowings.html", &struct {
		PageData
		Borrowings []model.Borrowing
	}{
		PageData:   s.pageData(w, r, "Izposoje"),
		Borrowings: borrowings,
	})
}

// BorrowingNewPage handles GET /borrowing/new.
func (s *Server) BorrowingNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderBorrowingForm(w, r, s.pageData(w, r, "Nova izposoja"), nil)
}

func (s *Server) renderBorrowingForm(w http.ResponseWriter, r *http.Request, pd PageData, form map[string]string) {
	books, err := store.ListAvailableBooks(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list available books", "error", err)
	}
	members, err := store.ListActiveMembers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list active members", "error", err)
	}

	if form == nil {
		now := time.Now()
		form = map[string]string{
			"borrow_date": now.Format(model.DateFormat),
			"due_date":    now.AddDate(0, 0, 14).Format(model.DateFormat),
		}
	}

	s.Templates.Render(w, "borrowing_new.html", &struct {
		PageData
		Books   []model.Book
		Members []model.Member
		Form    map[string]string
	}{
		PageData: pd,
		Books:    books,
		Members:  members,
		Form:     form,
	})
}

// BorrowingCreateSubmit handles POST /borrowing/new.
func (s *Server) BorrowingCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	memberID, _ := strconv.ParseInt(r.FormValue("member_id"), 10, 64)
	bookID, _ := strconv.ParseInt(r.FormValue("book_id"), 10, 64)
	borrowDate := r.FormValue("borrow_date")
	dueDate := r.FormValue("due_date")

	borrowing, err := store.CreateBorrowing(r.Context(), s.DB, memberID, bookID, borrowDate, dueDate)
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to create borrowing", "error", err)
		}
		pd := s.pageData(w, r, "Nova izposoja")
		pd.Error = userMessage(err)
		s.renderBorrowingForm(w, r, pd, map[string]string{
			"member_id":   r.FormValue("member_id"),
			"book_id":     r.FormValue("book_id"),
			"borrow_date": borrowDate,
			"due_date":    dueDate,
		})
		return
	}

	slog.Info("borrowing created", "user", claims.Username,
		"book", borrowing.BookTitle, "member", borrowing.MemberName, "due", borrowing.DueDate)
	setFlash(w, flashSuccess, "Izposoja uspešno zabeležena.")
	http.Redirect(w, r, fmt.Sprintf("/borrowing/%d", borrowing.ID), http.StatusSeeOther)
}

// BorrowingDetailPage handles GET /borrowing/{id}.
func (s *Server) BorrowingDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	borrowing, err := store.GetBorrowing(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get borrowing", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if borrowing == nil {
		http.NotFound(w, r)
		return
	}

	s.Templates.Render(w, "borrowing_detail.html", &struct {
		PageData
		Borrowing *model.Borrowing
	}{
		PageData:  s.pageData(w, r, "Izposoja"),
		Borrowing: borrowing,
	})
}
