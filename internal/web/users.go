package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// UsersPage handles GET /users (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	users, _ := store.ListUsers(r.Context(), s.DB)

	s.Templates.Render(w, "users.html", &struct {
		PageData
		Users []model.User
	}{
		PageData: s.pageData(w, r, "Uporabniki"),
		Users:    users,
	})
}

// UserCreateSubmit handles POST /users (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || role == "" {
		setFlash(w, flashError, "Vnesite uporabniško ime in vlogo.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		setFlash(w, flashError, "Geslo mora imeti vsaj 8 znakov.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, username, string(hash), role); err != nil {
		if !isUserError(err) {
			slog.Error("failed to create user", "error", err)
		}
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	slog.Info("user created", "admin", claims.Username, "user", username, "role", role)
	setFlash(w, flashSuccess, "Uporabnik uspešno dodan.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /users/{id}/password (admin only).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	if err := model.ValidatePassword(newPassword); err != nil {
		setFlash(w, flashError, "Geslo mora imeti vsaj 8 znakov.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, id, string(hash)); err != nil {
		slog.Error("failed to reset password", "error", err)
	}
	setFlash(w, flashSuccess, "Geslo ponastavljeno.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserUpdateRoleSubmit handles POST /users/{id}/role (admin only).
func (s *Server) UserUpdateRoleSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	role := r.FormValue("role")
	if err := store.UpdateUserRole(r.Context(), s.DB, id, role); err != nil {
		if !isUserError(err) {
			slog.Error("failed to update role", "error", err)
		}
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	slog.Info("user role updated", "admin", claims.Username, "user_id", id, "role", role)
	setFlash(w, flashSuccess, "Vloga posodobljena.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "settings.html", &PageData{
		Title: "Nastavitve",
		User:  GetWebClaims(r.Context()),
	})
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	pd := PageData{Title: "Nastavitve", User: claims}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		pd.Error = "Vnesite trenutno in novo geslo."
		s.Templates.Render(w, "settings.html", &pd)
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		pd.Error = "Novo geslo mora imeti vsaj 8 znakov."
		s.Templates.Render(w, "settings.html", &pd)
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		pd.Error = "Napaka pri pridobivanju uporabnika."
		s.Templates.Render(w, "settings.html", &pd)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		pd.Error = "Trenutno geslo ni pravilno."
		s.Templates.Render(w, "settings.html", &pd)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		pd.Error = "Napaka pri shranjevanju gesla."
		s.Templates.Render(w, "settings.html", &pd)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		pd.Error = "Napaka pri posodabljanju gesla."
		s.Templates.Render(w, "settings.html", &pd)
		return
	}

	pd.Success = "Geslo uspešno spremenjeno."
	s.Templates.Render(w, "settings.html", &pd)
}
