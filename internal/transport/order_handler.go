package transport

import (
	"encoding/json"
	"net/http"

	"github.com/rapPayne/online-store-server/internal/middleware"
	"github.com/rapPayne/online-store-server/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutItemRequest is one requested order line. Quantity is validated by
// the checkout core so failures carry the offending product id.
type CheckoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest represents the checkout payload.
type CheckoutRequest struct {
	Items       []CheckoutItemRequest `json:"items" validate:"required,min=1"`
	ShipAddress string                `json:"ship_address" validate:"required"`
}

// OrderHandler handles HTTP requests for orders and checkout.
type OrderHandler struct {
	orders   *service.OrderService
	checkout *service.CheckoutService
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *service.OrderService, checkout *service.CheckoutService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: checkout, logger: logger}
}

// RegisterRoutes registers all order routes. Everything requires
// authentication; listing all orders and mutations require admin.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, adminOrSelfMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(adminMiddleware).Get("/", h.List)
		r.With(adminOrSelfMiddleware).Get("/user/{username}", h.ListByUser)
		r.Get("/{id}", h.Get)
		r.Post("/checkout", h.Checkout)
		r.With(adminMiddleware).Patch("/{id}", h.Update)
		r.With(adminMiddleware).Delete("/{id}", h.Delete)
	})
}

// List returns every order.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// ListByUser returns the orders owned by the named user.
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.logger.Error("Failed to list user orders", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get returns one order, owner or admin only.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	order, err := h.orders.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Checkout validates the cart, reserves stock, charges the gateway, and
// returns the persisted order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.checkout.Checkout(r.Context(), caller, service.CheckoutRequest{
		Items:       items,
		ShipAddress: req.ShipAddress,
	})
	if err != nil {
		h.logger.Warn("Checkout failed",
			zap.String("username", caller.Username),
			zap.Error(err),
		)
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// Update applies an admin field patch to an order.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Delete removes an order.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Order deleted successfully",
		"order":   order,
	})
}
