// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mariposa-labs/storefront/internal/core"
	"github.com/mariposa-labs/storefront/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the order endpoints. Everything requires a
// principal; status updates additionally require admin.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.PlaceOrder)
		r.Get("/my-orders", h.ListMyOrders)
		r.Get("/{orderID}", h.GetOrder)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Put("/{orderID}/status", h.UpdateStatus)
		})
	})
}

// PlaceOrder accepts a JSON array of order lines.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var items []OrderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if len(items) == 0 {
		core.BadRequest(w, "order must contain at least one item")
		return
	}

	for _, item := range items {
		if err := h.validator.Struct(item); err != nil {
			core.BadRequest(w, core.FormatValidationError(err))
			return
		}
	}

	order, err := h.service.PlaceOrder(r.Context(), middleware.GetUserID(r.Context()), items)
	switch {
	case errors.Is(err, ErrUserNotFound):
		core.NotFound(w, "user")
		return
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
		return
	case err != nil:
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToOrderResponse(order))
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListMyOrders(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")
	if uuid.Validate(id) != nil {
		core.NotFound(w, "order")
		return
	}

	order, err := h.service.GetOrder(
		r.Context(),
		id,
		middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()),
	)
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "order")
		return
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
		return
	case err != nil:
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(order))
}

// UpdateStatus reads the new status from the `status` query parameter.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")
	if uuid.Validate(id) != nil {
		core.NotFound(w, "order")
		return
	}

	status := r.URL.Query().Get("status")
	err := h.validator.Var(
		status,
		"required,oneof=PENDING PAID SHIPPED DELIVERED CANCELLED",
	)
	if err != nil {
		core.BadRequest(
			w,
			"status must be one of: PENDING PAID SHIPPED DELIVERED CANCELLED",
		)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, status)
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "order")
		return
	}
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(order))
}
