package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/inventory"
	"github.com/rapPayne/online-store-server/internal/middleware"
	"github.com/rapPayne/online-store-server/internal/payment"
	"github.com/rapPayne/online-store-server/internal/service"
	"github.com/rapPayne/online-store-server/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

// testEnv wires the full route tree over an in-memory store, the same shape
// the server assembles in production minus the outer middleware stack.
type testEnv struct {
	router chi.Router
	store  *store.MemStore
	users  *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	ms := store.NewMemStore()

	users := service.NewUserService(ms, testJWTSecret, logger)
	products := service.NewProductService(ms, logger)
	orders := service.NewOrderService(ms, logger)
	checkout := service.NewCheckoutService(ms, inventory.NewLedger(ms), payment.NewStubGateway(0, 1), logger)

	auth := middleware.AuthMiddleware(testJWTSecret, logger)
	admin := middleware.RequireAdmin(logger)
	adminOrSelf := middleware.RequireAdminOrSelf(logger)

	r := chi.NewRouter()
	NewProductHandler(products, logger).RegisterRoutes(r, auth, admin)
	NewUserHandler(users, logger).RegisterRoutes(r, auth, admin, adminOrSelf)
	NewOrderHandler(orders, checkout, logger).RegisterRoutes(r, auth, admin, adminOrSelf)

	return &testEnv{router: r, store: ms, users: users}
}

// seedUser inserts an account directly and returns a bearer token for it.
func (e *testEnv) seedUser(t *testing.T, username, role string) string {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), service.BcryptCost)
	require.NoError(t, err)
	require.NoError(t, store.Users(e.store).Add(ctx, domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		First:    "Test",
		Last:     "User",
		Role:     role,
	}))

	token, _, err := e.users.Login(ctx, username, "password123")
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedProduct(t *testing.T, p domain.Product) {
	t.Helper()
	require.NoError(t, store.Products(e.store).Add(context.Background(), p))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}
