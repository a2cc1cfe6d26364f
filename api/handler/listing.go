package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/httpcontext"
	catalogUC "github.com/fastygo/marketplace/usecase/catalog"
)

type ListingHandler struct {
	baseHandler
	uc *catalogUC.UseCase
}

func NewListingHandler(uc *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Browse listings
// @Tags listings
// @Router /api/v1/listings [get]
func (h *ListingHandler) List(ctx *fasthttp.RequestCtx) {
	filter := catalogUC.Filter{
		BusinessID: query(ctx, "business_id"),
		Status:     domain.ListingStatus(query(ctx, "status")),
		Category:   query(ctx, "category"),
		Search:     query(ctx, "search"),
		Sort:       query(ctx, "sort"),
		Limit:      parseInt(query(ctx, "limit"), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	listings, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, listings, len(listings))
}

// @Summary Get a listing
// @Tags listings
// @Router /api/v1/listings/{id} [get]
func (h *ListingHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	listing, err := h.uc.Get(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, listing)
}

// @Summary Create a listing
// @Tags listings
// @Router /api/v1/listings [post]
func (h *ListingHandler) Create(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	var req catalogUC.ListingInput
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	listing, err := h.uc.Create(stdCtx, p.User, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, listing)
}

// @Summary Update a listing
// @Tags listings
// @Router /api/v1/listings/{id} [put]
func (h *ListingHandler) Update(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	var req catalogUC.ListingPatch
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	listing, err := h.uc.Update(stdCtx, p.User, pathParam(ctx, "id"), req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, listing)
}

// @Summary Delete a listing
// @Tags listings
// @Router /api/v1/listings/{id} [delete]
func (h *ListingHandler) Delete(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, p.User, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
