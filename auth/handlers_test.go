package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/globals"
	"recipebook/render"
	"recipebook/utils"
)

func newTestHandler(t *testing.T) (*Handler, *Sessions) {
	t.Helper()
	sessions, _ := newTestSessions(t)
	rd, err := render.New(zap.NewNop())
	require.NoError(t, err)
	return NewHandler(newTestService(), sessions, rd, zap.NewNop(), false), sessions
}

func post(path string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == globals.SessionCookie {
			return c
		}
	}
	return nil
}

func TestRegisterHandler(t *testing.T) {
	h, sessions := newTestHandler(t)

	w := httptest.NewRecorder()
	h.Register(w, post("/register", url.Values{"username": {"alice"}, "password": {"pw"}}), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie := sessionCookie(w)
	require.NotNil(t, cookie, "registration logs the user in")
	assert.True(t, cookie.HttpOnly)
	identity, err := sessions.Parse(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	w = httptest.NewRecorder()
	h.Register(w, post("/register", url.Values{"username": {"alice"}, "password": {"pw2"}}), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
	assert.Nil(t, sessionCookie(w))

	w = httptest.NewRecorder()
	h.Register(w, post("/register", url.Values{"username": {"bob"}}), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler(t *testing.T) {
	h, _ := newTestHandler(t)
	_, err := h.svc.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Login(w, post("/login", url.Values{"username": {"alice"}, "password": {"pw"}}), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NotNil(t, sessionCookie(w))

	w = httptest.NewRecorder()
	h.Login(w, post("/login", url.Values{"username": {"alice"}, "password": {"nope"}}), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, sessionCookie(w))
}

func TestLogoutHandler(t *testing.T) {
	h, sessions := newTestHandler(t)
	ctx := context.Background()
	user, err := h.svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	token, err := sessions.Issue(user)
	require.NoError(t, err)
	identity, err := sessions.Parse(ctx, token)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, r.WithContext(utils.WithIdentity(r.Context(), identity)), nil)

	assert.Equal(t, http.StatusFound, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)

	_, err = sessions.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	w = httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodGet, "/logout", nil), nil)
	assert.Equal(t, http.StatusFound, w.Code)
}
