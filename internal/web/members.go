package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

type memberForm struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

func readMemberForm(r *http.Request) memberForm {
	return memberForm{
		Name:    r.FormValue("name"),
		Address: r.FormValue("address"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
	}
}

// MembersPage handles GET /members.
func (s *Server) MembersPage(w http.ResponseWriter, r *http.Request) {
	members, err := store.ListMembers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list members", "error", err)
	}

	s.Templates.Render(w, "members.html", &struct {
		PageData
		Members []model.Member
	}{
		PageData: s.pageData(w, r, "Člani"),
		Members:  members,
	})
}

// MemberRegisterPage handles GET /members/register.
func (s *Server) MemberRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "member_register.html", &struct {
		PageData
		Form memberForm
	}{
		PageData: s.pageData(w, r, "Nov član"),
	})
}

// MemberRegisterSubmit handles POST /members/register.
func (s *Server) MemberRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	form := readMemberForm(r)

	member, err := store.CreateMember(r.Context(), s.DB, form.Name, form.Address, form.Email, form.Phone)
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to create member", "error", err)
		}
		pd := s.pageData(w, r, "Nov član")
		pd.Error = userMessage(err)
		s.Templates.Render(w, "member_register.html", &struct {
			PageData
			Form memberForm
		}{PageData: pd, Form: form})
		return
	}

	slog.Info("member registered", "user", claims.Username, "member", member.Name)
	setFlash(w, flashSuccess, "Član uspešno vpisan.")
	http.Redirect(w, r, fmt.Sprintf("/members/%d", member.ID), http.StatusSeeOther)
}

// MemberDetailPage handles GET /members/{id}.
func (s *Server) MemberDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	member, err := store.GetMember(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get member", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if member == nil {
		http.NotFound(w, r)
		return
	}

	borrowings, err := store.ListBorrowingsForMember(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list member borrowings", "error", err)
	}

	s.Templates.Render(w, "member_detail.html", &struct {
		PageData
		Member     *model.Member
		Borrowings []model.Borrowing
	}{
		PageData:   s.pageData(w, r, member.Name),
		Member:     member,
		Borrowings: borrowings,
	})
}

// MemberEditPage handles GET /members/{id}/edit.
func (s *Server) MemberEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	member, err := store.GetMember(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get member", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if member == nil {
		http.NotFound(w, r)
		return
	}

	s.Templates.Render(w, "member_edit.html", &struct {
		PageData
		Member *model.Member
	}{
		PageData: s.pageData(w, r, "Uredi člana"),
		Member:   member,
	})
}

// MemberEditSubmit handles POST /members/{id}/edit.
func (s *Server) MemberEditSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = store.UpdateMember(r.Context(), s.DB, id,
		r.FormValue("name"), r.FormValue("address"), r.FormValue("phone"), r.FormValue("status"))
	if err != nil {
		if !isUserError(err) {
			slog.Error("failed to update member", "error", err)
		}
		setFlash(w, flashError, userMessage(err))
		http.Redirect(w, r, fmt.Sprintf("/members/%d/edit", id), http.StatusSeeOther)
		return
	}

	slog.Info("member updated", "user", claims.Username, "member_id", id)
	setFlash(w, flashSuccess, "Član uspešno posodobljen.")
	http.Redirect(w, r, fmt.Sprintf("/members/%d", id), http.StatusSeeOther)
}
