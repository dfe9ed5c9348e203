package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zkraljic/biblio/internal/auth"
	"github.com/zkraljic/biblio/internal/model"
	webembed "github.com/zkraljic/biblio/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Skrbnik"
			case model.RoleLibrarian:
				return "Knjižničar"
			default:
				return role
			}
		},
		"statusName": func(status string) string {
			switch status {
			case model.MemberStatusActive:
				return "Aktiven"
			case model.MemberStatusInactive:
				return "Neaktiven"
			case model.BorrowingStatusBorrowed:
				return "Izposojeno"
			case model.BorrowingStatusReturned:
				return "Vrnjeno"
			default:
				return status
			}
		},
		"maintenanceStatusName": func(status model.MaintenanceStatus) string {
			switch status {
			case model.MaintenancePending:
				return "V čakanju"
			case model.MaintenanceInProgress:
				return "V obdelavi"
			case model.MaintenanceCompleted:
				return "Zaključeno"
			default:
				return string(status)
			}
		},
		"fmtDate": func(t time.Time) string {
			return t.Format(model.DateFormat)
		},
		"nl2br": func(s string) template.HTML {
			escaped := template.HTMLEscapeString(s)
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	// Read layout.
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"dashboard.html",
		"books.html",
		"book_register.html",
		"book_detail.html",
		"book_edit.html",
		"members.html",
		"member_register.html",
		"member_detail.html",
		"member_edit.html",
		"borrowings.html",
		"borrowing_new.html",
		"borrowing_detail.html",
		"returns.html",
		"returns_history.html",
		"maintenance.html",
		"maintenance_new.html",
		"maintenance_detail.html",
		"maintenance_history.html",
		"users.html",
		"settings.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
}

// pageData builds the base template data, consuming any pending flash
// message.
func (s *Server) pageData(w http.ResponseWriter, r *http.Request, title string) PageData {
	pd := PageData{Title: title, User: GetWebClaims(r.Context())}
	switch kind, msg := popFlash(w, r); kind {
	case flashSuccess:
		pd.Success = msg
	case flashError:
		pd.Error = msg
	}
	return pd
}
