package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/api/transport"
	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/httpcontext"
	"github.com/fastygo/marketplace/repository"
	orderUC "github.com/fastygo/marketplace/usecase/order"
)

type OrderHandler struct {
	baseHandler
	uc *orderUC.UseCase
}

func NewOrderHandler(uc *orderUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Check out the cart
// @Tags orders
// @Router /api/v1/orders [post]
func (h *OrderHandler) Create(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	var req orderUC.PlaceOrderInput
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.PlaceOrder(stdCtx, p.User, p.Session.ID, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, order)
}

// @Summary Orders visible to the caller
// @Tags orders
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	filter := repository.OrderFilter{
		UserID:     query(ctx, "user_id"),
		BusinessID: query(ctx, "business_id"),
		Status:     domain.OrderStatus(query(ctx, "status")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.uc.List(stdCtx, p.User, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	h.respondList(ctx, orders, len(orders))
}

// @Summary Get an order
// @Tags orders
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.Get(stdCtx, p.User, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, order)
}

// @Summary Complete or cancel an order
// @Tags orders
// @Router /api/v1/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	var req transport.StatusRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.UpdateStatus(stdCtx, p.User, pathParam(ctx, "id"), domain.OrderStatus(req.Status))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, order)
}

// @Summary Pickup QR code
// @Tags orders
// @Produce png
// @Router /api/v1/orders/{id}/pickup-code [get]
func (h *OrderHandler) PickupCode(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	png, err := h.uc.PickupCode(stdCtx, p.User, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.Response.Header.SetContentType("image/png")
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(png)
}
