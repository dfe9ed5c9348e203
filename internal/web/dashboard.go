package web

import (
	"log/slog"
	"net/http"

	"github.com/zkraljic/biblio/internal/model"
	"github.com/zkraljic/biblio/internal/store"
)

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load dashboard stats", "error", err)
		stats = &store.Stats{}
	}

	active, err := store.ListActiveBorrowings(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list borrowings for dashboard", "error", err)
	}

	// Surface only the loans already past due.
	overdue := make([]model.Borrowing, 0, len(active))
	for _, b := range active {
		if b.DaysOverdue > 0 {
			overdue = append(overdue, b)
		}
	}
	if len(overdue) > 10 {
		overdue = overdue[:10]
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Stats   *store.Stats
		Overdue []model.Borrowing
	}{
		PageData: s.pageData(w, r, "Nadzorna plošča"),
		Stats:    stats,
		Overdue:  overdue,
	})
}
