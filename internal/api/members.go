package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// MembersHandler handles member registry endpoints.
type MembersHandler struct {
	DB *sql.DB
}

type createMemberRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type updateMemberRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

// List handles GET /api/members.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	var members []model.Member
	var err error
	if r.URL.Query().Get("active") == "true" {
		members, err = store.ListActiveMembers(r.Context(), h.DB)
	} else {
		members, err = store.ListMembers(r.Context(), h.DB)
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	jsonResponse(w, http.StatusOK, members)
}

// Create handles POST /api/members.
func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := store.CreateMember(r.Context(), h.DB, req.Name, req.Address, req.Email, req.Phone)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, member)
}

// Get handles GET /api/members/{id}.
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := store.GetMember(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}

	borrowings, err := store.ListBorrowingsForMember(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get borrowing history")
		return
	}
	if borrowings == nil {
		borrowings = []model.Borrowing{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"member":     member,
		"borrowings": borrowings,
	})
}

// Update handles PUT /api/members/{id}.
func (h *MembersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Status == "" {
		req.Status = model.MemberStatusActive
	}

	if err := store.UpdateMember(r.Context(), h.DB, id, req.Name, req.Address, req.Phone, req.Status); err != nil {
		storeError(w, err)
		return
	}

	member, _ := store.GetMember(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, member)
}
