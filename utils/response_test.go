package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		nil:                     http.StatusOK,
		models.ErrUnauthorized:  http.StatusForbidden,
		models.ErrNotFound:      http.StatusNotFound,
		models.ErrInvalidAction: http.StatusBadRequest,
		models.ErrConflict:      http.StatusConflict,
		models.ErrValidation:    http.StatusInternalServerError,
		fmt.Errorf("wrapped: %w", models.ErrNotFound): http.StatusNotFound,
		fmt.Errorf("boom"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), "err=%v", err)
	}
}

func TestIdentityFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, IdentityFromRequest(r))

	ident := &models.Identity{UserID: primitive.NewObjectID(), Username: "alice"}
	r = r.WithContext(WithIdentity(context.Background(), ident))
	assert.Equal(t, ident, IdentityFromRequest(r))

	r = r.WithContext(WithIdentity(context.Background(), &models.Identity{}))
	assert.Nil(t, IdentityFromRequest(r))
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusTeapot, "nope")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, w.Body.String())
}

func TestIsJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/order", nil)
	assert.False(t, IsJSONBody(r))
	assert.False(t, WantsJSON(r))

	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, IsJSONBody(r))

	r = httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set("Accept", "text/html, application/json")
	assert.True(t, WantsJSON(r))
}
