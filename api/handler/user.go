package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/api/transport"
	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/httpcontext"
	"github.com/fastygo/marketplace/repository"
	authUC "github.com/fastygo/marketplace/usecase/auth"
)

// UserHandler exposes account administration and profile edits.
type UserHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewUserHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List users (admin)
// @Tags users
// @Router /api/v1/users [get]
func (h *UserHandler) List(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	filter := repository.UserFilter{
		Role:   domain.Role(query(ctx, "role")),
		Status: domain.UserStatus(query(ctx, "status")),
		Search: query(ctx, "search"),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.ListUsers(stdCtx, p.User, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	h.respondList(ctx, users, len(users))
}

// @Summary Change a user's status (admin)
// @Tags users
// @Router /api/v1/users/{id}/status [put]
func (h *UserHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
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

	user, err := h.uc.UpdateUserStatus(stdCtx, p.User, pathParam(ctx, "id"), domain.UserStatus(req.Status))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Update a profile
// @Tags users
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) Update(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	var req authUC.ProfilePatch
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.UpdateUserProfile(stdCtx, p, pathParam(ctx, "id"), req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
