package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/api/transport"
	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/httpcontext"
	authUC "github.com/fastygo/marketplace/usecase/auth"
)

// TokenIssuer signs the bearer token handed out for a session.
type TokenIssuer interface {
	Issue(session *domain.Session) (string, error)
}

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	tokens TokenIssuer
}

func NewAuthHandler(uc *authUC.UseCase, tokens TokenIssuer, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		tokens:      tokens,
	}
}

// @Summary Register an account
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req authUC.RegisterInput
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Register(stdCtx, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSession(ctx, http.StatusCreated, result.Session, result.User, result.Message)
}

// @Summary Log in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("user logged in", zap.String("user_id", result.User.ID))
	h.respondSession(ctx, http.StatusOK, result.Session, result.User, result.Message)
}

// @Summary End the current session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	p := httpcontext.Principal(ctx)
	if p == nil || p.Session == nil {
		h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "Logged out"})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, p.Session.ID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "Logged out"})
}

// @Summary Extend the current session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.RefreshSession(stdCtx, p.Session.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSession(ctx, http.StatusOK, session, nil, "Session extended")
}

// @Summary Current user
// @Tags auth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	p := h.principal(ctx)
	if p == nil {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, p)
}

func (h *AuthHandler) respondSession(ctx *fasthttp.RequestCtx, status int, session *domain.Session, user interface{}, message string) {
	token, err := h.tokens.Issue(session)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, status, transport.AuthResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		Message:   message,
	})
}
