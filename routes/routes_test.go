package routes

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/auth"
	"recipebook/cart"
	"recipebook/middleware"
	"recipebook/models"
	"recipebook/orderfeed"
	"recipebook/orders"
	"recipebook/ratelim"
	"recipebook/recipes"
	"recipebook/render"
	"recipebook/uploads"
	"recipebook/users"
)

type app struct {
	srv     *httptest.Server
	recipes *recipes.MemoryRepository
	carts   *cart.MemoryRepository
	orders  *orders.MemoryRepository
}

func newApp(t *testing.T) *app {
	t.Helper()
	logger := zap.NewNop()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rd, err := render.New(logger)
	require.NoError(t, err)

	userRepo := users.NewMemoryRepository()
	recipeRepo := recipes.NewMemoryRepository()
	cartRepo := cart.NewMemoryRepository()
	orderRepo := orders.NewMemoryRepository()

	sessions := auth.NewSessions([]byte("secret"), time.Hour, auth.NewRedisRevocations(rdb))
	hub := orderfeed.NewHub(logger, func(*http.Request) bool { return true })
	go hub.Run()
	t.Cleanup(hub.Stop)

	uploadDir := t.TempDir()
	cartSvc := cart.NewService(cartRepo, recipeRepo, cart.NewRedisCache(rdb), logger)
	h := Handlers{
		Auth:      auth.NewHandler(auth.NewService(userRepo), sessions, rd, logger, false),
		Recipes:   recipes.NewHandler(recipes.NewService(recipeRepo, userRepo), uploads.NewStore(uploadDir), rd, logger),
		Cart:      cart.NewHandler(cartSvc, rd, logger),
		Orders:    orders.NewHandler(orders.NewService(orderRepo, hub, logger), cartSvc, orders.NewReceiptSigner([]byte("secret")), rd, logger),
		Feed:      hub,
		Session:   middleware.NewAuth(sessions, logger),
		UploadDir: uploadDir,
	}

	srv := httptest.NewServer(RoutesWrapper(h, ratelim.NewRateLimiter(100, 100)))
	t.Cleanup(srv.Close)
	return &app{srv: srv, recipes: recipeRepo, carts: cartRepo, orders: orderRepo}
}

func client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	resp, err := http.Get(a.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	a := newApp(t)
	c := client(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/add-to-cart/000000000000000000000000"},
		{http.MethodPost, "/update-cart/000000000000000000000000"},
		{http.MethodPost, "/add-recipe"},
		{http.MethodGet, "/orders/live"},
	} {
		req, err := http.NewRequest(route.method, a.srv.URL+route.path, nil)
		require.NoError(t, err)
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, route.path)
	}
	assert.Equal(t, 0, a.carts.Count())
}

func TestShoppingFlow(t *testing.T) {
	a := newApp(t)
	c := client(t)

	resp, err := c.PostForm(a.srv.URL+"/register", url.Values{"username": {"alice"}, "password": {"pw"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, err = c.PostForm(a.srv.URL+"/add-recipe", url.Values{"title": {"Pancakes"}, "category": {"breakfast"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	list, err := a.recipes.List(context.Background(), models.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	recipeID := list[0].ID.Hex()

	for i := 0; i < 2; i++ {
		resp, err = c.Post(a.srv.URL+"/add-to-cart/"+recipeID, "", nil)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
	}

	resp, err = c.Get(a.srv.URL + "/cart")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Get(a.srv.URL + "/order")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.PostForm(a.srv.URL+"/order", url.Values{
		"address":     {"1 Main St"},
		"phoneNumber": {"555-0100"},
		"itemId":      {recipeID},
		"quantity":    {"1"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/thank-you/"))
	assert.Equal(t, 1, a.orders.Count())

	resp, err = c.Get(a.srv.URL + loc)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// placing an order leaves the cart alone
	assert.Equal(t, 1, a.carts.Count())

	resp, err = c.Get(a.srv.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = c.Get(a.srv.URL + "/cart")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
