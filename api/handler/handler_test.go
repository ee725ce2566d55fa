package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	infra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/web"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/pkg/sessiontoken"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

const cookieName = "session"

func newTestServer(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tasks.db")
	if err := infra.RunMigrations(dbPath, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := infra.Open(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sessions, err := boltRepo.Open(filepath.Join(dir, "sessions.db"), time.Hour)
	if err != nil {
		t.Fatalf("open sessions: %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close() })

	signer, err := sessiontoken.NewSigner("test-secret", "taskboard")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}

	authUseCase := authUC.New(sqliteRepo.NewUserRepository(db), sessions, password.NewHasher(bcrypt.MinCost), signer, time.Hour, nil)
	taskUseCase := taskUC.New(sqliteRepo.NewTaskRepository(db), nil)

	mon := monitor.New(map[string]monitor.Pinger{
		"database": monitor.PingFunc(db.PingContext),
		"sessions": sessions,
	}, time.Minute, nil)
	mon.Refresh()

	adapter := httpcontext.NewAdapter(5 * time.Second)
	pages := web.NewRenderer()
	cookie := handler.CookieConfig{Name: cookieName}

	auth := middleware.NewSessionAuth(authUseCase, cookieName, 5*time.Second, nil)
	r := router.New(router.Handlers{
		Auth:   handler.NewAuthHandler(authUseCase, pages, cookie, adapter, nil),
		Page:   handler.NewPageHandler(authUseCase, pages, adapter, nil),
		Task:   handler.NewTaskHandler(taskUseCase, adapter, nil),
		Health: handler.NewHealthHandler(mon, adapter, nil),
	}, router.Guards{Page: auth.Page, API: auth.API})

	return r.Handler
}

// browser keeps the session cookie between requests the way a browser would.
type browser struct {
	t       *testing.T
	handler fasthttp.RequestHandler
	session string
}

func newBrowser(t *testing.T, h fasthttp.RequestHandler) *browser {
	return &browser{t: t, handler: h}
}

func (b *browser) do(method, path, contentType string, body []byte) *fasthttp.RequestCtx {
	b.t.Helper()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	req.Header.SetHost("localhost")
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if body != nil {
		req.SetBody(body)
	}
	if b.session != "" {
		req.Header.SetCookie(cookieName, b.session)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(req, nil, nil)
	b.handler(ctx)

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(cookieName)
	if ctx.Response.Header.Cookie(cookie) {
		b.session = string(cookie.Value())
	}
	return ctx
}

func (b *browser) get(path string) *fasthttp.RequestCtx {
	return b.do(fasthttp.MethodGet, path, "", nil)
}

func (b *browser) postForm(path string, form url.Values) *fasthttp.RequestCtx {
	return b.do(fasthttp.MethodPost, path, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

func (b *browser) postJSON(path, body string) *fasthttp.RequestCtx {
	return b.do(fasthttp.MethodPost, path, "application/json", []byte(body))
}

func (b *browser) register(username, pw string) {
	b.t.Helper()
	ctx := b.postForm("/register", url.Values{"username": {username}, "password": {pw}})
	assertRedirect(b.t, ctx, "/")
	if b.session == "" {
		b.t.Fatal("expected a session cookie after registering")
	}
}

func (b *browser) tasks() []transport.TaskResponse {
	b.t.Helper()
	ctx := b.get("/tasks")
	assertStatus(b.t, ctx, http.StatusOK)
	var out []transport.TaskResponse
	if err := json.Unmarshal(ctx.Response.Body(), &out); err != nil {
		b.t.Fatalf("decode tasks: %v (%s)", err, ctx.Response.Body())
	}
	return out
}

func assertStatus(t *testing.T, ctx *fasthttp.RequestCtx, want int) {
	t.Helper()
	if got := ctx.Response.StatusCode(); got != want {
		t.Fatalf("%s %s: expected status %d, got %d (%s)", ctx.Method(), ctx.Path(), want, got, ctx.Response.Body())
	}
}

func assertRedirect(t *testing.T, ctx *fasthttp.RequestCtx, path string) {
	t.Helper()
	assertStatus(t, ctx, http.StatusFound)
	location := string(ctx.Response.Header.Peek("Location"))
	parsed, err := url.Parse(location)
	if err != nil || parsed.Path != path {
		t.Fatalf("expected redirect to %s, got %q", path, location)
	}
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var env transport.Envelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, ctx.Response.Body())
	}
	return env
}

func TestTwoUsersSeeOnlyTheirOwnTasks(t *testing.T) {
	srv := newTestServer(t)

	alice := newBrowser(t, srv)
	alice.register("alice", "pw1")

	ctx := alice.postJSON("/add", `{"title":"Buy milk","due_date":"2024-05-01","note":null}`)
	assertStatus(t, ctx, http.StatusOK)
	if env := decodeEnvelope(t, ctx); !env.OK {
		t.Fatalf("expected ok envelope, got %+v", env)
	}

	list := alice.tasks()
	if len(list) != 1 {
		t.Fatalf("expected one task, got %d", len(list))
	}
	milk := list[0]
	if milk.Title != "Buy milk" || milk.Done || milk.Note != nil {
		t.Fatalf("unexpected task %+v", milk)
	}
	if milk.DueDate == nil || *milk.DueDate != "2024-05-01" {
		t.Fatalf("unexpected due date %v", milk.DueDate)
	}

	bob := newBrowser(t, srv)
	bob.register("bob", "pw2")
	if got := bob.tasks(); len(got) != 0 {
		t.Fatalf("bob should see no tasks, got %d", len(got))
	}

	id := itoa(milk.ID)
	assertStatus(t, bob.do(fasthttp.MethodPost, "/toggle/"+id, "", nil), http.StatusNotFound)
	assertStatus(t, bob.do(fasthttp.MethodPost, "/delete/"+id, "", nil), http.StatusNotFound)

	if got := alice.tasks(); len(got) != 1 || got[0].Done {
		t.Fatalf("bob's requests must not touch alice's task: %+v", got)
	}
}

func TestToggleAndDelete(t *testing.T) {
	srv := newTestServer(t)
	alice := newBrowser(t, srv)
	alice.register("alice", "pw1")

	assertStatus(t, alice.postJSON("/add", `{"title":"first"}`), http.StatusOK)
	assertStatus(t, alice.postJSON("/add", `{"title":"second","note":"n"}`), http.StatusOK)

	list := alice.tasks()
	if len(list) != 2 || list[0].Title != "second" || list[1].Title != "first" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	first := itoa(list[1].ID)
	assertStatus(t, alice.do(fasthttp.MethodPost, "/toggle/"+first, "", nil), http.StatusOK)
	if got := alice.tasks(); !got[1].Done {
		t.Fatal("expected task to be done after one toggle")
	}
	assertStatus(t, alice.do(fasthttp.MethodPost, "/toggle/"+first, "", nil), http.StatusOK)
	if got := alice.tasks(); got[1].Done {
		t.Fatal("expected task to be open after two toggles")
	}

	assertStatus(t, alice.do(fasthttp.MethodPost, "/delete/"+first, "", nil), http.StatusOK)
	assertStatus(t, alice.do(fasthttp.MethodPost, "/delete/"+first, "", nil), http.StatusNotFound)
	assertStatus(t, alice.do(fasthttp.MethodPost, "/toggle/abc", "", nil), http.StatusNotFound)

	if got := alice.tasks(); len(got) != 1 || got[0].Title != "second" {
		t.Fatalf("unexpected list after delete: %+v", got)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	srv := newTestServer(t)
	alice := newBrowser(t, srv)
	alice.register("alice", "pw1")

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{name: "blank title", body: `{"title":"   "}`, msg: "title is required"},
		{name: "missing title", body: `{}`, msg: "title is required"},
		{name: "bad due date", body: `{"title":"x","due_date":"05/01/2024"}`, msg: "due_date must be YYYY-MM-DD"},
		{name: "malformed json", body: `{"title":`, msg: "invalid payload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := alice.postJSON("/add", tc.body)
			assertStatus(t, ctx, http.StatusBadRequest)
			if env := decodeEnvelope(t, ctx); env.Error != tc.msg {
				t.Fatalf("expected %q, got %+v", tc.msg, env)
			}
		})
	}

	if got := alice.tasks(); len(got) != 0 {
		t.Fatalf("rejected requests must not create tasks, got %d", len(got))
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	srv := newTestServer(t)
	anon := newBrowser(t, srv)

	assertRedirect(t, anon.get("/"), "/login")

	ctx := anon.get("/tasks")
	assertStatus(t, ctx, http.StatusUnauthorized)
	if env := decodeEnvelope(t, ctx); env.Code != "UNAUTHORIZED" || env.Error != "unauthorized" {
		t.Fatalf("unexpected body %+v", env)
	}
	assertStatus(t, anon.postJSON("/add", `{"title":"x"}`), http.StatusUnauthorized)
	assertStatus(t, anon.do(fasthttp.MethodPost, "/toggle/1", "", nil), http.StatusUnauthorized)
	assertStatus(t, anon.do(fasthttp.MethodPost, "/delete/1", "", nil), http.StatusUnauthorized)

	anon.session = "not-a-token"
	assertStatus(t, anon.get("/tasks"), http.StatusUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	srv := newTestServer(t)
	alice := newBrowser(t, srv)
	alice.register("alice", "pw1")

	ctx := alice.get("/")
	assertStatus(t, ctx, http.StatusOK)
	if !strings.Contains(string(ctx.Response.Body()), "alice") {
		t.Fatalf("expected greeting in shell, got %s", ctx.Response.Body())
	}

	stolen := alice.session
	assertRedirect(t, alice.get("/logout"), "/login")
	if alice.session != "" {
		t.Fatalf("expected cookie to be cleared, got %q", alice.session)
	}

	replay := newBrowser(t, srv)
	replay.session = stolen
	assertStatus(t, replay.get("/tasks"), http.StatusUnauthorized)
	assertRedirect(t, replay.get("/"), "/login")
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	first := newBrowser(t, srv)
	first.register("alice", "pw1")

	again := newBrowser(t, srv)
	ctx := again.postForm("/register", url.Values{"username": {"alice"}, "password": {"other"}})
	assertStatus(t, ctx, http.StatusConflict)
	if !strings.Contains(string(ctx.Response.Body()), "Username already taken") {
		t.Fatalf("expected duplicate message, got %s", ctx.Response.Body())
	}

	ctx = again.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assertStatus(t, ctx, http.StatusUnauthorized)
	if !strings.Contains(string(ctx.Response.Body()), "Invalid credentials") {
		t.Fatalf("expected credentials message, got %s", ctx.Response.Body())
	}
	if again.session != "" {
		t.Fatal("failed login must not set a session")
	}

	ctx = again.postForm("/login", url.Values{"username": {"nobody"}, "password": {"pw1"}})
	assertStatus(t, ctx, http.StatusUnauthorized)

	ctx = again.postForm("/login", url.Values{"username": {""}, "password": {""}})
	assertStatus(t, ctx, http.StatusBadRequest)

	again.postForm("/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	if again.session == "" {
		t.Fatal("expected session cookie after login")
	}
	assertStatus(t, again.get("/"), http.StatusOK)
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t)
	anon := newBrowser(t, srv)

	for _, path := range []string{"/login", "/register"} {
		ctx := anon.get(path)
		assertStatus(t, ctx, http.StatusOK)
		if !strings.Contains(string(ctx.Response.Header.ContentType()), "text/html") {
			t.Fatalf("%s: expected html, got %s", path, ctx.Response.Header.ContentType())
		}
	}

	ctx := anon.get("/static/app.js")
	assertStatus(t, ctx, http.StatusOK)
	if len(ctx.Response.Body()) == 0 {
		t.Fatal("expected script body")
	}

	assertStatus(t, anon.get("/health"), http.StatusOK)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
