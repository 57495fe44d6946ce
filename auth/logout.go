package auth

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipebook/globals"
	"recipebook/utils"
)

// Logout revokes the current token, clears the cookie and goes home.
// Anonymous callers just get redirected.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if identity := utils.IdentityFromRequest(r); identity != nil {
		if err := h.sessions.Revoke(r.Context(), identity); err != nil {
			h.logger.Error("failed to revoke session", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     globals.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
