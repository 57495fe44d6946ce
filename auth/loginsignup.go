package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipebook/globals"
	"recipebook/models"
	"recipebook/render"
	"recipebook/utils"
)

// Handler serves the login, registration and logout pages.
type Handler struct {
	svc          *Service
	sessions     *Sessions
	rd           *render.Renderer
	logger       *zap.Logger
	secureCookie bool
}

func NewHandler(svc *Service, sessions *Sessions, rd *render.Renderer, logger *zap.Logger, secureCookie bool) *Handler {
	return &Handler{svc: svc, sessions: sessions, rd: rd, logger: logger, secureCookie: secureCookie}
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.rd.HTML(w, http.StatusOK, "login", render.Page{Title: "Log in", User: utils.IdentityFromRequest(r)})
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.rd.HTML(w, http.StatusOK, "register", render.Page{Title: "Register", User: utils.IdentityFromRequest(r)})
}

// Login starts a session and sends the user home; any failure goes back
// to the login form.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := h.svc.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, ErrBadCredentials) {
			h.logger.Error("login failed", zap.Error(err))
		}
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := h.startSession(w, user); err != nil {
		h.logger.Error("failed to start session", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Register creates the account and logs it straight in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		h.rd.HTML(w, http.StatusBadRequest, "register", render.Page{Title: "Register", Error: "Invalid input"})
		return
	}

	user, err := h.svc.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		msg, status := "Registration failed", http.StatusInternalServerError
		switch {
		case errors.Is(err, models.ErrConflict):
			msg, status = "A user with the given username is already registered", http.StatusConflict
		case errors.Is(err, models.ErrValidation):
			msg, status = "Username and password are required", http.StatusBadRequest
		default:
			h.logger.Error("register failed", zap.Error(err))
		}
		h.rd.HTML(w, status, "register", render.Page{Title: "Register", Error: msg})
		return
	}

	h.logger.Info("user registered", zap.String("username", user.Username))
	if err := h.startSession(w, user); err != nil {
		h.logger.Error("failed to start session", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) startSession(w http.ResponseWriter, user *models.User) error {
	token, err := h.sessions.Issue(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     globals.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessions.TTL()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
