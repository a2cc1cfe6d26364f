package middleware

import (
	"context"
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/api/transport"
	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/httpcontext"
)

// TokenParser extracts the session id from a bearer token.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// Authenticator resolves a session id to its caller.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*domain.Principal, error)
}

// Auth resolves the bearer token on a request to a principal stored on the
// request context.
type Auth struct {
	tokens  TokenParser
	auth    Authenticator
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func NewAuth(tokens TokenParser, auth Authenticator, adapter *httpcontext.Adapter, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auth{tokens: tokens, auth: auth, adapter: adapter, logger: logger}
}

// Require rejects requests without a valid session.
func (a *Auth) Require(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		principal, err := a.resolve(ctx)
		if err != nil {
			a.reject(ctx, err)
			return
		}
		if principal == nil {
			a.reject(ctx, domain.ErrUnauthorized)
			return
		}
		httpcontext.SetPrincipal(ctx, principal)
		next(ctx)
	}
}

// Optional attaches the principal when one is present and passes anonymous
// or stale requests through untouched.
func (a *Auth) Optional(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if principal, err := a.resolve(ctx); err == nil && principal != nil {
			httpcontext.SetPrincipal(ctx, principal)
		}
		next(ctx)
	}
}

func (a *Auth) resolve(ctx *fasthttp.RequestCtx) (*domain.Principal, error) {
	raw := httpcontext.BearerToken(ctx)
	if raw == "" {
		return nil, nil
	}
	sessionID, err := a.tokens.Parse(raw)
	if err != nil {
		a.logger.Debug("invalid bearer token", zap.Error(err))
		return nil, domain.ErrUnauthorized
	}

	var stdCtx context.Context = context.Background()
	if a.adapter != nil {
		var cancel context.CancelFunc
		stdCtx, cancel = a.adapter.Attach(ctx)
		defer cancel()
	}
	return a.auth.Authenticate(stdCtx, sessionID)
}

func (a *Auth) reject(ctx *fasthttp.RequestCtx, err error) {
	status := fasthttp.StatusUnauthorized
	code := string(domain.ErrCodeUnauthorized)
	message := domain.ErrUnauthorized.Error()
	if !errors.Is(err, domain.ErrUnauthorized) {
		a.logger.Error("session lookup failed", zap.Error(err))
		status = fasthttp.StatusInternalServerError
		code = string(domain.ErrCodeInternal)
		message = "internal error"
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(transport.NewError(code, message, nil).Body())
}
