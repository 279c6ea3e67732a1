// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mariposa-labs/storefront/internal/core"
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

// RegisterRoutes mounts the catalog. Reads are public; writes and the
// low-stock report require an admin principal.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth, authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/", h.ListProducts)
			r.Get("/{productID}", h.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(adminOnly)

			r.Post("/", h.CreateProduct)
			r.Get("/low-stock", h.ListLowStock)
			r.Put("/{productID}", h.UpdateProduct)
			r.Delete("/{productID}", h.DeleteProduct)
		})
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProductResponseList(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if uuid.Validate(id) != nil {
		core.NotFound(w, "product")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "product")
		return
	}
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProductResponse(product))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	product, err := h.service.CreateProduct(
		r.Context(),
		req.Name,
		req.Price,
		req.Stock,
		req.ImageURL,
	)
	if errors.Is(err, core.ErrInvalidInput) {
		core.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToProductResponse(product))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if uuid.Validate(id) != nil {
		core.NotFound(w, "product")
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	product, err := h.service.UpdateProduct(
		r.Context(),
		id,
		req.Name,
		req.Price,
		req.Stock,
		req.ImageURL,
	)
	if errors.Is(err, core.ErrInvalidInput) {
		core.BadRequest(w, err.Error())
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "product")
		return
	}
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProductResponse(product))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if uuid.Validate(id) != nil {
		core.NotFound(w, "product")
		return
	}

	err := h.service.DeleteProduct(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "product")
		return
	}
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := DefaultLowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			core.BadRequest(w, "threshold must be a positive integer")
			return
		}
		threshold = parsed
	}

	products, err := h.service.ListLowStock(r.Context(), threshold)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProductResponseList(products))
}
