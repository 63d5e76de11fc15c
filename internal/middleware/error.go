package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rapPayne/online-store-server/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// respondWithError sends a structured error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithErrorDetails(w, statusCode, message, nil)
}

// respondWithErrorDetails sends a structured error response with additional details
func respondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithError(w, statusCode, message)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	respondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// RespondWithDomainError maps a core error kind to its transport status and
// serializes whatever context the error carries. The core itself has no
// transport-format dependency; this is the only place the mapping lives.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		quantityErr   *domain.InvalidQuantityError
		stockErr      *domain.InsufficientStockError
		paymentErr    *domain.PaymentError
		commitErr     *domain.CommitInconsistencyError
		storageErr    *domain.StorageError
	)

	switch {
	case errors.As(err, &stockErr):
		respondWithErrorDetails(w, http.StatusBadRequest, stockErr.Error(), map[string]interface{}{
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		})
	case errors.As(err, &quantityErr):
		respondWithErrorDetails(w, http.StatusBadRequest, quantityErr.Error(), map[string]interface{}{
			"product_id": quantityErr.ProductID,
			"quantity":   quantityErr.Quantity,
		})
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &paymentErr):
		respondWithErrorDetails(w, http.StatusBadRequest, paymentErr.Error(), map[string]interface{}{
			"reason": paymentErr.Reason,
		})
	case errors.As(err, &commitErr):
		respondWithErrorDetails(w, http.StatusInternalServerError, "order could not be recorded after payment; contact support", map[string]interface{}{
			"payment_id": commitErr.PaymentID,
		})
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.As(err, &storageErr):
		respondWithError(w, http.StatusInternalServerError, "storage failure")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					respondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
