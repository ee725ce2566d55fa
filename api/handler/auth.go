package handler

import (
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/internal/web"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

// AuthHandler serves the form-based register, login and logout routes.
type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	pages  *web.Renderer
	cookie CookieConfig
}

func NewAuthHandler(uc *authUC.UseCase, pages *web.Renderer, cookie CookieConfig, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		pages:       pages,
		cookie:      cookie,
	}
}

// @Summary Registration form
// @Router /register [get]
func (h *AuthHandler) RegisterForm(ctx *fasthttp.RequestCtx) {
	h.renderForm(ctx, http.StatusOK, h.pages.Register, web.FormPage{})
}

// @Summary Create an account and sign in
// @Router /register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	form := transport.ParseCredentials(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	ticket, err := h.uc.Register(stdCtx, form.Username, form.Password)
	if err != nil {
		status, _, message := h.classify(stdCtx, err)
		h.renderForm(ctx, status, h.pages.Register, web.FormPage{Error: message, Username: form.Username})
		return
	}
	h.signIn(ctx, ticket)
}

// @Summary Login form
// @Router /login [get]
func (h *AuthHandler) LoginForm(ctx *fasthttp.RequestCtx) {
	h.renderForm(ctx, http.StatusOK, h.pages.Login, web.FormPage{})
}

// @Summary Verify credentials and sign in
// @Router /login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	form := transport.ParseCredentials(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	ticket, err := h.uc.Login(stdCtx, form.Username, form.Password)
	if err != nil {
		status, _, message := h.classify(stdCtx, err)
		h.renderForm(ctx, status, h.pages.Login, web.FormPage{Error: message, Username: form.Username})
		return
	}
	h.signIn(ctx, ticket)
}

// @Summary Revoke the session and return to the login form
// @Router /logout [get]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if token := h.cookie.token(ctx); token != "" {
		if err := h.uc.Logout(stdCtx, token); err != nil {
			h.logger.Error("logout failed", zap.Error(err))
		}
	}
	h.cookie.clear(ctx)
	ctx.Redirect("/login", fasthttp.StatusFound)
}

func (h *AuthHandler) signIn(ctx *fasthttp.RequestCtx, ticket *authUC.Ticket) {
	h.cookie.set(ctx, ticket.Token, ticket.ExpiresAt)
	ctx.Redirect("/", fasthttp.StatusFound)
}

func (h *AuthHandler) renderForm(ctx *fasthttp.RequestCtx, status int, render func(io.Writer, web.FormPage) error, page web.FormPage) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(status)
	if err := render(ctx, page); err != nil {
		h.logger.Error("render form", zap.Error(err))
		ctx.ResetBody()
		ctx.Error(internalErrorMessage, http.StatusInternalServerError)
	}
}
