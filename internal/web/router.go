package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/zkraljic/biblio/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Dashboard)))

	mux.Handle("GET /books", cookieAuth(http.HandlerFunc(s.BooksPage)))
	mux.Handle("GET /books/register", cookieAuth(http.HandlerFunc(s.BookRegisterPage)))
	mux.Handle("POST /books/register", cookieAuth(http.HandlerFunc(s.BookRegisterSubmit)))
	mux.Handle("GET /books/{id}", cookieAuth(http.HandlerFunc(s.BookDetailPage)))
	mux.Handle("GET /books/{id}/edit", cookieAuth(http.HandlerFunc(s.BookEditPage)))
	mux.Handle("POST /books/{id}/edit", cookieAuth(http.HandlerFunc(s.BookEditSubmit)))
	mux.Handle("GET /books/{id}/cover", cookieAuth(http.HandlerFunc(s.BookCoverGet)))
	mux.Handle("POST /books/{id}/cover", cookieAuth(http.HandlerFunc(s.BookCoverSubmit)))

	mux.Handle("GET /members", cookieAuth(http.HandlerFunc(s.MembersPage)))
	mux.Handle("GET /members/register", cookieAuth(http.HandlerFunc(s.MemberRegisterPage)))
	mux.Handle("POST /members/register", cookieAuth(http.HandlerFunc(s.MemberRegisterSubmit)))
	mux.Handle("GET /members/{id}", cookieAuth(http.HandlerFunc(s.MemberDetailPage)))
	mux.Handle("GET /members/{id}/edit", cookieAuth(http.HandlerFunc(s.MemberEditPage)))
	mux.Handle("POST /members/{id}/edit", cookieAuth(http.HandlerFunc(s.MemberEditSubmit)))

	mux.Handle("GET /borrowing", cookieAuth(http.HandlerFunc(s.BorrowingsPage)))
	mux.Handle("GET /borrowing/new", cookieAuth(http.HandlerFunc(s.BorrowingNewPage)))
	mux.Handle("POST /borrowing/new", cookieAuth(http.HandlerFunc(s.BorrowingCreateSubmit)))
	mux.Handle("GET /borrowing/{id}", cookieAuth(http.HandlerFunc(s.BorrowingDetailPage)))

	mux.Handle("GET /returns", cookieAuth(http.HandlerFunc(s.ReturnsPage)))
	mux.Handle("GET /returns/search", cookieAuth(http.HandlerFunc(s.ReturnsPage)))
	mux.Handle("POST /returns/process/{id}", cookieAuth(http.HandlerFunc(s.ReturnProcessSubmit)))
	mux.Handle("GET /returns/history", cookieAuth(http.HandlerFunc(s.ReturnsHistoryPage)))

	mux.Handle("GET /maintenance", cookieAuth(http.HandlerFunc(s.MaintenancePage)))
	mux.Handle("GET /maintenance/new", cookieAuth(http.HandlerFunc(s.MaintenanceNewPage)))
	mux.Handle("POST /maintenance/new", cookieAuth(http.HandlerFunc(s.MaintenanceCreateSubmit)))
	mux.Handle("GET /maintenance/{id}", cookieAuth(http.HandlerFunc(s.MaintenanceDetailPage)))
	mux.Handle("POST /maintenance/{id}/update", cookieAuth(http.HandlerFunc(s.MaintenanceUpdateSubmit)))
	mux.Handle("GET /maintenance/history/{bookId}", cookieAuth(http.HandlerFunc(s.MaintenanceHistoryPage)))

	mux.Handle("GET /users", cookieAuth(http.HandlerFunc(s.UsersPage)))
	mux.Handle("POST /users", cookieAuth(http.HandlerFunc(s.UserCreateSubmit)))
	mux.Handle("POST /users/{id}/password", cookieAuth(http.HandlerFunc(s.UserResetPasswordSubmit)))
	mux.Handle("POST /users/{id}/role", cookieAuth(http.HandlerFunc(s.UserUpdateRoleSubmit)))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))

	return mux, nil
}
