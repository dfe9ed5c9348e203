package api

import (
	"database/sql"
	"net/http"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	booksHandler := &BooksHandler{DB: db}
	membersHandler := &MembersHandler{DB: db}
	borrowingsHandler := &BorrowingsHandler{DB: db}
	maintenanceHandler := &MaintenanceHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Books.
	mux.Handle("GET /api/books", authMW(http.HandlerFunc(booksHandler.List)))
	mux.Handle("POST /api/books", authMW(http.HandlerFunc(booksHandler.Create)))
	mux.Handle("GET /api/books/{id}", authMW(http.HandlerFunc(booksHandler.Get)))
	mux.Handle("PUT /api/books/{id}", authMW(http.HandlerFunc(booksHandler.Update)))
	mux.Handle("POST /api/books/{id}/adjust", authMW(http.HandlerFunc(booksHandler.Adjust)))
	mux.Handle("PUT /api/books/{id}/cover", authMW(http.HandlerFunc(booksHandler.UploadCover)))
	mux.Handle("GET /api/books/{id}/cover", authMW(http.HandlerFunc(booksHandler.GetCover)))

	// Members.
	mux.Handle("GET /api/members", authMW(http.HandlerFunc(membersHandler.List)))
	mux.Handle("POST /api/members", authMW(http.HandlerFunc(membersHandler.Create)))
	mux.Handle("GET /api/members/{id}", authMW(http.HandlerFunc(membersHandler.Get)))
	mux.Handle("PUT /api/members/{id}", authMW(http.HandlerFunc(membersHandler.Update)))

	// Borrowings.
	mux.Handle("POST /api/borrowings", authMW(http.HandlerFunc(borrowingsHandler.Create)))
	mux.Handle("GET /api/borrowings", authMW(http.HandlerFunc(borrowingsHandler.List)))
	mux.Handle("GET /api/borrowings/history", authMW(http.HandlerFunc(borrowingsHandler.History)))
	mux.Handle("GET /api/borrowings/{id}", authMW(http.HandlerFunc(borrowingsHandler.Get)))
	mux.Handle("POST /api/borrowings/{id}/return", authMW(http.HandlerFunc(borrowingsHandler.Return)))

	// Maintenance.
	mux.Handle("POST /api/maintenance", authMW(http.HandlerFunc(maintenanceHandler.Create)))
	mux.Handle("GET /api/maintenance", authMW(http.HandlerFunc(maintenanceHandler.List)))
	mux.Handle("GET /api/maintenance/book/{bookId}", authMW(http.HandlerFunc(maintenanceHandler.BookHistory)))
	mux.Handle("GET /api/maintenance/{id}", authMW(http.HandlerFunc(maintenanceHandler.Get)))
	mux.Handle("POST /api/maintenance/{id}/status", authMW(http.HandlerFunc(maintenanceHandler.UpdateStatus)))

	// Dashboard stats.
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.GetStats(r.Context(), db)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		jsonResponse(w, http.StatusOK, stats)
	})))

	return mux
}
