package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/web"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

// PageHandler serves the authenticated page shell and its script.
type PageHandler struct {
	baseHandler
	users *authUC.UseCase
	pages *web.Renderer
}

func NewPageHandler(users *authUC.UseCase, pages *web.Renderer, adapter *httpcontext.Adapter, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		users:       users,
		pages:       pages,
	}
}

// @Summary Task page shell; data is loaded by the page script
// @Router / [get]
func (h *PageHandler) Index(ctx *fasthttp.RequestCtx) {
	userID, ok := httpcontext.UserID(ctx)
	if !ok {
		ctx.Redirect("/login", fasthttp.StatusFound)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.users.User(stdCtx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			// Session outlived its account.
			ctx.Redirect("/logout", fasthttp.StatusFound)
			return
		}
		logger.FromContext(stdCtx, h.logger).Error("load user for shell", zap.Error(err))
		ctx.Error(internalErrorMessage, http.StatusInternalServerError)
		return
	}

	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(http.StatusOK)
	if err := h.pages.Shell(ctx, web.ShellPage{Username: user.Username}); err != nil {
		h.logger.Error("render shell", zap.Error(err))
		ctx.ResetBody()
		ctx.Error(internalErrorMessage, http.StatusInternalServerError)
	}
}

// @Summary Client-side task script
// @Router /static/app.js [get]
func (h *PageHandler) Script(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/javascript; charset=utf-8")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.SetBody(web.Script())
}
