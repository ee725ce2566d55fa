package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

const (
	// UserValueUserID is the fasthttp user value set by the session middleware.
	UserValueUserID = "user_id"

	HeaderRequestID = "X-Request-ID"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with the adapter's timeout carrying the request ID
// and the authenticated user, if any.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if userID, ok := UserID(ctx); ok {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}

	return stdCtx, cancel
}

// RequestID returns the request's ID, taking it from the incoming header or
// generating one, and echoes it on the response.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if existing := string(ctx.Response.Header.Peek(HeaderRequestID)); existing != "" {
		return existing
	}
	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.Response.Header.Set(HeaderRequestID, reqID)
	return reqID
}

// SetUserID records the authenticated user on the request.
func SetUserID(ctx *fasthttp.RequestCtx, userID int64) {
	ctx.SetUserValue(UserValueUserID, userID)
}

// UserID returns the authenticated user recorded by the session middleware.
func UserID(ctx *fasthttp.RequestCtx) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.UserValue(UserValueUserID).(int64)
	return id, ok && id != 0
}
