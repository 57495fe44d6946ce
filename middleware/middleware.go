package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipebook/auth"
	"recipebook/globals"
	"recipebook/models"
	"recipebook/utils"
)

// SessionParser resolves a session token to an identity.
type SessionParser interface {
	Parse(ctx context.Context, token string) (*models.Identity, error)
}

// Auth loads the session identity onto request contexts.
type Auth struct {
	sessions SessionParser
	logger   *zap.Logger
}

func NewAuth(sessions SessionParser, logger *zap.Logger) *Auth {
	return &Auth{sessions: sessions, logger: logger}
}

// identity returns nil with a nil error for anonymous requests and invalid
// sessions. A non-nil error means the session could not be checked.
func (a *Auth) identity(r *http.Request) (*models.Identity, error) {
	cookie, err := r.Cookie(globals.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	identity, err := a.sessions.Parse(r.Context(), cookie.Value)
	if errors.Is(err, auth.ErrInvalidSession) {
		a.logger.Debug("ignoring session cookie", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		a.logger.Error("session check failed", zap.Error(err))
		return nil, err
	}
	return identity, nil
}

// OptionalAuth attaches the identity when the session is valid and
// proceeds regardless.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if identity, _ := a.identity(r); identity != nil {
			r = r.WithContext(utils.WithIdentity(r.Context(), identity))
		}
		next(w, r, ps)
	}
}

// Authenticate rejects anonymous requests with 403 and requests whose
// session could not be checked with 500.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, err := a.identity(r)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if identity == nil {
			http.Error(w, "You must be logged in.", http.StatusForbidden)
			return
		}
		next(w, r.WithContext(utils.WithIdentity(r.Context(), identity)), ps)
	}
}
