package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/api/transport"
	"github.com/fastygo/marketplace/pkg/httpcontext"
	cartUC "github.com/fastygo/marketplace/usecase/cart"
)

// CartHandler serves the caller's cart, which is keyed by their session.
type CartHandler struct {
	baseHandler
	uc *cartUC.UseCase
}

func NewCartHandler(uc *cartUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Current cart with totals
// @Tags cart
// @Router /api/v1/cart [get]
func (h *CartHandler) Get(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.Get(stdCtx, p.Session.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Add a listing to the cart
// @Tags cart
// @Router /api/v1/cart/items [post]
func (h *CartHandler) AddItem(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	var req transport.CartItemRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.Add(stdCtx, p.Session.ID, req.ListingID, req.Quantity)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Change a cart line's quantity
// @Tags cart
// @Router /api/v1/cart/items/{id} [put]
func (h *CartHandler) UpdateItem(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	var req transport.CartQuantityRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.SetQuantity(stdCtx, p.Session.ID, pathParam(ctx, "id"), req.Quantity)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Remove a cart line
// @Tags cart
// @Router /api/v1/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.Remove(stdCtx, p.Session.ID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Empty the cart
// @Tags cart
// @Router /api/v1/cart [delete]
func (h *CartHandler) Clear(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Clear(stdCtx, p.Session.ID); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
