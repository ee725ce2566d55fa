package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Page   *apiHandler.PageHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// Guards wraps handlers that need an authenticated session.
type Guards struct {
	Page func(fasthttp.RequestHandler) fasthttp.RequestHandler
	API  func(fasthttp.RequestHandler) fasthttp.RequestHandler
}

func New(handlers Handlers, guards Guards) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	r.GET("/static/app.js", handlers.Page.Script)

	// Forms
	r.GET("/register", handlers.Auth.RegisterForm)
	r.POST("/register", handlers.Auth.Register)
	r.GET("/login", handlers.Auth.LoginForm)
	r.POST("/login", handlers.Auth.Login)
	r.GET("/logout", handlers.Auth.Logout)

	// Protected page
	r.GET("/", guards.Page(handlers.Page.Index))

	// Protected JSON API
	r.GET("/tasks", guards.API(handlers.Task.List))
	r.POST("/add", guards.API(handlers.Task.Add))
	r.POST("/toggle/{id}", guards.API(handlers.Task.Toggle))
	r.POST("/delete/{id}", guards.API(handlers.Task.Delete))

	return r
}
