package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zkraljic/biblio/internal/imaging"
	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// bookForm holds submitted book fields so a failed form can be re-rendered
// with the values intact.
type bookForm struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	Year        string
	TotalCopies string
}

func readBookForm(r *http.Request) bookForm {
	return bookForm{
		ISBN:        r.FormValue("isbn"),
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
		Publisher:   r.FormValue("publisher"),
		Year:        r.FormValue("publication_year"),
		TotalCopies: r.FormValue("total_copies"),
	}
}

// BooksPage handles GET /books.
func (s *Server) BooksPage(w http.ResponseWriter, r *http.Request) {
	books, err := store.ListBooks(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list books", "error", err)
	}

	s.Templates.Render(w, "books.html", &struct {
		PageData
		Books []model.Book
	}{
		PageData: s.pageData(w, r, "Knjige"),
		Books:    books,
	})
}

// BookRegisterPage handles GET /books/register.
func (s *Server) BookRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "book_register.html", &struct {
		PageData
		Form bookForm
	}{
		PageData: s.pageData(w, r, "Nova knjiga"),
	})
}

// BookRegisterSubmit handles POST /books/register.
func (s *Server) BookRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	form := readBookForm(r)

	year, _ := strconv.Atoi(form.Year)
	copies, _ := strconv.Atoi(form.TotalCopies)

	book, err := store.CreateBook(r.Context(), s.DB, form.ISBN, form.Title, form.Author, form.Publisher, year, copies)
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to create book", "error", err)
		}
		pd := s.pageData(w, r, "Nova knjiga")
		pd.Error = userMessage(err)
		s.Templates.Render(w, "book_register.html", &struct {
			PageData
			Form bookForm
		}{PageData: pd, Form: form})
		return
	}

	slog.Info("book registered", "user", claims.Username, "book", book.Title, "isbn", book.ISBN)
	setFlash(w, flashSuccess, "Knjiga uspešno dodana.")
	http.Redirect(w, r, fmt.Sprintf("/books/%d", book.ID), http.StatusSeeOther)
}

// BookDetailPage handles GET /books/{id}.
func (s *Server) BookDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	book, err := store.GetBook(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get book", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if book == nil {
		http.NotFound(w, r)
		return
	}

	borrowings, err := store.ListBorrowingsForBook(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list book borrowings", "error", err)
	}
	maintenance, err := store.GetBookMaintenanceHistory(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list book maintenance", "error", err)
	}

	s.Templates.Render(w, "book_detail.html", &struct {
		PageData
		Book        *model.Book
		Borrowings  []model.Borrowing
		Maintenance []model.Maintenance
	}{
		PageData:    s.pageData(w, r, book.Title),
		Book:        book,
		Borrowings:  borrowings,
		Maintenance: maintenance,
	})
}

// BookEditPage handles GET /books/{id}/edit.
func (s *Server) BookEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	book, err := store.GetBook(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get book", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if book == nil {
		http.NotFound(w, r)
		return
	}

	s.Templates.Render(w, "book_edit.html", &struct {
		PageData
		Book *model.Book
	}{
		PageData: s.pageData(w, r, "Uredi knjigo"),
		Book:     book,
	})
}

// BookEditSubmit handles POST /books/{id}/edit.
func (s *Server) BookEditSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	year, _ := strconv.Atoi(r.FormValue("publication_year"))
	copies, _ := strconv.Atoi(r.FormValue("total_copies"))

	err = store.UpdateBook(r.Context(), s.DB, id,
		r.FormValue("title"), r.FormValue("author"), r.FormValue("publisher"), year, copies)
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to update book", "error", err)
		}
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, fmt.Sprintf("/books/%d/edit", id), http.StatusSeeOther)
		return
	}

	slog.Info("book updated", "user", claims.Username, "book_id", id)
	setFlash(w, flashSuccess, "Knjiga uspešno posodobljena.")
	http.Redirect(w, r, fmt.Sprintf("/books/%d", id), http.StatusSeeOther)
}

// BookCoverSubmit handles POST /books/{id}/cover.
func (s *Server) BookCoverSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		setFlash(w, flashError, "Datoteka je prevelika.")
		http.Redirect(w, r, fmt.Sprintf("/books/%d", id), http.StatusSeeOther)
		return
	}

	file, _, err := r.FormFile("cover")
	if err != nil {
		setFlash(w, flashError, "Izberite sliko naslovnice.")
		http.Redirect(w, r, fmt.Sprintf("/books/%d", id), http.StatusSeeOther)
		return
	}
	defer file.Close()

	// Process the image: validate format by sniffing bytes, downscale, compress.
	result, err := imaging.Process(file)
	if err != nil {
		setFlash(w, flashError, "Neveljavna slika.")
		http.Redirect(w, r, fmt.Sprintf("/books/%d", id), http.StatusSeeOther)
		return
	}

	if err := store.SetBookCover(r.Context(), s.DB, id, result.Data, result.MIME); err != nil {
		if !isUserError(err) {
			slog.Error("failed to save cover", "error", err)
		}
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, fmt.Sprintf("/books/%d", id), http.StatusSeeOther)
		return
	}

	slog.Info("book cover uploaded", "user", claims.Username, "book_id", id)
	setFlash(w, flashSuccess, "Naslovnica shranjena.")
	http.Redirect(w, r, fmt.Sprintf("/books/%d", id), http.StatusSeeOther)
}

// BookCoverGet handles GET /books/{id}/cover.
func (s *Server) BookCoverGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetBookCover(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get cover", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write cover response", "error", err)
	}
}
