package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
)

// SessionResolver turns a cookie token into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// SessionAuth resolves the session cookie on every request and records the
// user id for downstream handlers. Requests without a valid session never
// reach next: page routes are redirected to /login, API routes get a 401.
type SessionAuth struct {
	resolver   SessionResolver
	cookieName string
	timeout    time.Duration
	logger     *zap.Logger
}

func NewSessionAuth(resolver SessionResolver, cookieName string, timeout time.Duration, logger *zap.Logger) *SessionAuth {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cookieName == "" {
		cookieName = "session"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SessionAuth{resolver: resolver, cookieName: cookieName, timeout: timeout, logger: logger}
}

// Page guards HTML routes.
func (a *SessionAuth) Page(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		switch err := a.authenticate(ctx); {
		case err == nil:
			next(ctx)
		case errors.Is(err, domain.ErrUnauthenticated):
			ctx.Redirect("/login", fasthttp.StatusFound)
		default:
			ctx.Error("internal error", http.StatusInternalServerError)
		}
	}
}

// API guards JSON routes.
func (a *SessionAuth) API(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		err := a.authenticate(ctx)
		if err == nil {
			next(ctx)
			return
		}

		status := http.StatusInternalServerError
		payload := transport.NewError(string(domain.ErrCodeInternal), "internal error")
		if errors.Is(err, domain.ErrUnauthenticated) {
			status = http.StatusUnauthorized
			payload = transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrUnauthenticated.Message)
		}
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(status)
		ctx.SetBodyString(payload.String())
	}
}

func (a *SessionAuth) authenticate(ctx *fasthttp.RequestCtx) error {
	token := string(ctx.Request.Header.Cookie(a.cookieName))
	if token == "" {
		return domain.ErrUnauthenticated
	}

	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	stdCtx = logger.ContextWithRequestID(stdCtx, httpcontext.RequestID(ctx))

	session, err := a.resolver.Resolve(stdCtx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			logger.FromContext(stdCtx, a.logger).Error("session lookup failed", zap.Error(err))
		}
		return err
	}

	httpcontext.SetUserID(ctx, session.UserID)
	return nil
}
