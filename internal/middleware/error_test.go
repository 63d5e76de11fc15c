package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rapPayne/online-store-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRespondWithDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{
			"insufficient stock",
			&domain.InsufficientStockError{ProductID: "p1", Available: 2, Requested: 3},
			http.StatusBadRequest,
		},
		{
			"invalid quantity",
			&domain.InvalidQuantityError{ProductID: "p1", Quantity: -1},
			http.StatusBadRequest,
		},
		{
			"validation",
			&domain.ValidationError{Field: "ship_address", Message: "is required"},
			http.StatusBadRequest,
		},
		{
			"payment declined",
			&domain.PaymentError{Reason: "card declined"},
			http.StatusBadRequest,
		},
		{
			"commit inconsistency",
			&domain.CommitInconsistencyError{Username: "ana", PaymentID: "pay_1", Err: errors.New("disk full")},
			http.StatusInternalServerError,
		},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", &domain.ProductNotFoundError{ProductID: "p1"}, http.StatusNotFound},
		{"already exists", domain.ErrAlreadyExists, http.StatusConflict},
		{"storage", &domain.StorageError{Op: "write", Err: errors.New("io")}, http.StatusInternalServerError},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondWithDomainError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRespondWithDomainErrorCarriesStockDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithDomainError(rec, &domain.InsufficientStockError{ProductID: "p1", Available: 2, Requested: 3})

	resp := decodeError(t, rec)
	assert.Equal(t, "p1", resp.Error.Details["product_id"])
	assert.Equal(t, float64(2), resp.Error.Details["available"])
	assert.Equal(t, float64(3), resp.Error.Details["requested"])
}

func TestRespondWithDomainErrorNeverLeaksStorageDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithDomainError(rec, &domain.StorageError{Op: "write", Err: errors.New("/var/data/database.json: permission denied")})

	resp := decodeError(t, rec)
	assert.Equal(t, "storage failure", resp.Error.Message)
	assert.NotContains(t, resp.Error.Message, "database.json")
}

func TestRespondWithDomainErrorReportsPaymentIDOnCommitFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithDomainError(rec, &domain.CommitInconsistencyError{
		Username:  "ana",
		PaymentID: "pay_123",
		Err:       errors.New("disk full"),
	})

	resp := decodeError(t, rec)
	assert.Equal(t, "pay_123", resp.Error.Details["payment_id"])
	assert.Contains(t, resp.Error.Message, "contact support")
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(fmt.Errorf("boom"))
	})
	mw := ErrorHandlingMiddleware(zap.NewNop())(panicky)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "internal server error", resp.Error.Message)
}
