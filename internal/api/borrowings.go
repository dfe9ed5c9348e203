package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// BorrowingsHandler handles loan lifecycle endpoints.
type BorrowingsHandler struct {
	DB *sql.DB
}

type createBorrowingRequest struct {
	MemberID   int64  `json:"member_id"`
	BookID     int64  `json:"book_id"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
}

type returnRequest struct {
	ConditionNotes string `json:"condition_notes"`
}

// Create handles POST /api/borrowings.
func (h *BorrowingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBorrowingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.MemberID == 0 || req.BookID == 0 {
		jsonError(w, http.StatusBadRequest, "member_id and book_id required")
		return
	}

	borrowing, err := store.CreateBorrowing(r.Context(), h.DB, req.MemberID, req.BookID, req.BorrowDate, req.DueDate)
	if err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("borrowing created", "user", claims.Username,
		"book", borrowing.BookTitle, "member", borrowing.MemberName, "due", borrowing.DueDate)
	jsonResponse(w, http.StatusCreated, borrowing)
}

// List handles GET /api/borrowings. An optional query parameter filters
// active loans by book title, ISBN, member name or email.
func (h *BorrowingsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	var borrowings []model.Borrowing
	var err error
	if query != "" {
		borrowings, err = store.SearchActiveBorrowings(r.Context(), h.DB, query)
	} else {
		borrowings, err = store.ListActiveBorrowings(r.Context(), h.DB)
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list borrowings")
		return
	}
	if borrowings == nil {
		borrowings = []model.Borrowing{}
	}
	jsonResponse(w, http.StatusOK, borrowings)
}

// Get handles GET /api/borrowings/{id}.
func (h *BorrowingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid borrowing id")
		return
	}

	borrowing, err := store.GetBorrowing(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get borrowing")
		return
	}
	if borrowing == nil {
		jsonError(w, http.StatusNotFound, "borrowing not found")
		return
	}
	jsonResponse(w, http.StatusOK, borrowing)
}

// Return handles POST /api/borrowings/{id}/return.
func (h *BorrowingsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid borrowing id")
		return
	}

	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	borrowing, err := store.ProcessReturn(r.Context(), h.DB, id, req.ConditionNotes)
	if err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("return processed", "user", claims.Username,
		"book", borrowing.BookTitle, "member", borrowing.MemberName)
	jsonResponse(w, http.StatusOK, borrowing)
}

// History handles GET /api/borrowings/history.
func (h *BorrowingsHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := store.ListReturnHistory(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list return history")
		return
	}
	if history == nil {
		history = []model.Borrowing{}
	}
	jsonResponse(w, http.StatusOK, history)
}
