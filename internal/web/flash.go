package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/zkraljic/biblio/internal/store"
)

const flashSuccess = "success"
const flashError = "error"

// setFlash stores a one-shot message displayed on the next rendered page.
func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "flash",
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// popFlash reads the flash cookie and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) (kind, message string) {
	cookie, err := r.Cookie("flash")
	if err != nil || cookie.Value == "" {
		return "", ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "flash",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	decoded, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", ""
	}

	kind, message, _ = strings.Cut(decoded, "|")
	return kind, message
}

// userMessage maps store errors to messages safe to show on a page.
func userMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "Zapis ne obstaja."
	case errors.Is(err, store.ErrUnavailable):
		return "Noben izvod knjige ni na voljo za izposojo."
	case errors.Is(err, store.ErrMemberOverdue):
		return "Član ima zapadle izposoje in si ne more izposoditi nove knjige."
	case errors.Is(err, store.ErrInvalidDates):
		return "Datum izposoje ne sme biti v prihodnosti, rok vrnitve pa mora biti po njem."
	case errors.Is(err, store.ErrDuplicate):
		return "Zapis s temi podatki že obstaja."
	case errors.Is(err, store.ErrInvalidStatus):
		return "Neveljaven status."
	case errors.Is(err, store.ErrAvailabilityRange):
		return "Sprememba bi presegla dovoljeno število izvodov."
	case errors.Is(err, store.ErrInvalidInput):
		return "Preverite vnesene podatke."
	default:
		return "Prišlo je do napake. Poskusite znova."
	}
}

// isUserError reports whether err is a business rule violation rather
// than an internal failure.
func isUserError(err error) bool {
	for _, target := range []error{
		store.ErrNotFound,
		store.ErrUnavailable,
		store.ErrMemberOverdue,
		store.ErrInvalidDates,
		store.ErrDuplicate,
		store.ErrInvalidStatus,
		store.ErrAvailabilityRange,
		store.ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
