package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dukapos/m/domain"
	"dukapos/m/internal/repository"
)

type productRequest struct {
	Name     string           `json:"name" validate:"required,max=200"`
	Cost     *decimal.Decimal `json:"cost" validate:"required,gte=0"`
	Price    *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Quantity *int64           `json:"quantity" validate:"required,gte=0"`
}

type productPatchRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Cost     *decimal.Decimal `json:"cost" validate:"omitempty,gte=0"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Quantity *int64           `json:"quantity" validate:"omitempty,gte=0"`
}

func (p productPatchRequest) patch() domain.ProductPatch {
	return domain.ProductPatch{Name: p.Name, Cost: p.Cost, Price: p.Price, Quantity: p.Quantity}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context(), repository.ProductFilter{Query: r.URL.Query().Get("q")})
	if err != nil {
		h.respondDomainError(w, r, err, "unable to fetch inventory")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err, "unable to fetch product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if !h.validRequest(w, req) {
		return
	}

	product := &domain.Product{
		Name:     req.Name,
		Cost:     *req.Cost,
		Price:    *req.Price,
		Quantity: *req.Quantity,
	}
	if err := h.catalog.Create(r.Context(), product); err != nil {
		h.respondDomainError(w, r, err, "unable to add product")
		return
	}
	h.log.Info("product added", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req productPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if !h.validRequest(w, req) {
		return
	}

	product, err := h.catalog.Update(r.Context(), id, req.patch())
	if err != nil {
		h.respondDomainError(w, r, err, "unable to update product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(w, "invalid product id")
		return 0, false
	}
	return id, true
}

// validRequest runs struct validation and writes the 400 response on failure.
func (h *Handler) validRequest(w http.ResponseWriter, req interface{}) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "request validation failed",
		Code:    domain.ErrInvalidInput.Code,
		Details: validationDetails(err),
	})
	return false
}
