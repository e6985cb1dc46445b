package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skilllink/marketplace/internal/api/http/handlers"
	"github.com/skilllink/marketplace/internal/auth"
	"github.com/skilllink/marketplace/internal/classifier"
	"github.com/skilllink/marketplace/internal/config"
	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/observability"
	"github.com/skilllink/marketplace/internal/persistence"
	"github.com/skilllink/marketplace/internal/repository"
	"github.com/skilllink/marketplace/internal/service"
)

type stubGenerator struct{ answer string }

func (s stubGenerator) Generate(context.Context, string) (string, error) {
	return s.answer, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	ctx := context.Background()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
		SignupBonus:           100,
	}}
	logger := zap.NewNop()

	store := persistence.NewStore(persistence.NewMemoryBackend(), logger)
	workers, err := service.DemoWorkers(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("demo workers: %v", err)
	}
	if err := store.EnsureSeeded(ctx, workers); err != nil {
		t.Fatalf("seed: %v", err)
	}

	users := repository.NewUserRepository(store)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		Store: store, UserRepo: users, Tokens: tokens, Dispatcher: dispatcher, Logger: logger,
	})
	jobService := service.NewJobService(service.JobDependencies{
		Store: store, JobRepo: repository.NewJobRepository(store), UserRepo: users, Dispatcher: dispatcher, Logger: logger,
	})
	settlement := service.NewSettlementService(service.SettlementDependencies{
		Store: store, LedgerRepo: repository.NewLedgerRepository(store), Dispatcher: dispatcher, Logger: logger,
	})
	gen := stubGenerator{answer: `{"category":"Plumber","reason":"Leaks need a plumber","estimatedPrice":30}`}
	suggester := classifier.New(gen, logger, 0)

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("skilllink", "test", "memory", store, nil, suggester),
		Users:          handlers.NewUsersHandler(authService),
		Workers:        handlers.NewWorkersHandler(jobService),
		Jobs:           handlers.NewJobsHandler(jobService, settlement),
		Classify:       handlers.NewClassifyHandler(suggester),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users),
	})
	return app, metrics
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return out
}

type authData struct {
	Session domain.Session `json:"session"`
	Auth    struct {
		Token string `json:"token"`
	} `json:"auth"`
}

func TestHireToSettlementOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := call(t, app, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "Ana", "email": "ana@home.com", "password": "pw", "role": "SEEKER",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%+v)", status, env.Error)
	}
	seekerToken := decode[authData](t, env).Auth.Token

	status, env = call(t, app, http.MethodGet, "/workers?category=Carpenter", seekerToken, nil)
	workers := decode[[]domain.User](t, env)
	if status != http.StatusOK || len(workers) != 1 || workers[0].ID != "w1" {
		t.Fatalf("unexpected workers %d %+v", status, workers)
	}

	status, env = call(t, app, http.MethodPost, "/jobs", seekerToken, map[string]any{"workerId": "w1", "description": "Fix shelf"})
	if status != http.StatusCreated {
		t.Fatalf("hire: expected 201, got %d (%+v)", status, env.Error)
	}
	job := decode[domain.Job](t, env)

	status, env = call(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "john@work.com", "password": "123", "role": "WORKER",
	})
	if status != http.StatusOK {
		t.Fatalf("worker login: %d (%+v)", status, env.Error)
	}
	workerToken := decode[authData](t, env).Auth.Token

	for _, step := range []struct {
		path string
		want domain.JobStatus
	}{
		{"/jobs/" + job.ID + "/accept", domain.JobStatusInProgress},
		{"/jobs/" + job.ID + "/complete", domain.JobStatusCompleted},
	} {
		status, env = call(t, app, http.MethodPost, step.path, workerToken, nil)
		if got := decode[domain.Job](t, env); status != http.StatusOK || got.Status != step.want {
			t.Fatalf("%s: expected %s, got %d %s", step.path, step.want, status, got.Status)
		}
	}

	status, env = call(t, app, http.MethodPost, "/jobs/"+job.ID+"/settle", seekerToken, map[string]any{"rating": 4, "comment": "Great"})
	if status != http.StatusOK {
		t.Fatalf("settle: %d (%+v)", status, env.Error)
	}
	res := decode[service.SettlementResult](t, env)
	if res.Worker.Rating != 4.8 || res.Worker.ReviewCount != 13 || res.Seeker.Balance != 55 {
		t.Fatalf("unexpected settlement %+v", res)
	}

	status, env = call(t, app, http.MethodPost, "/jobs/"+job.ID+"/settle", seekerToken, map[string]any{"rating": 4})
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "INVALID_TRANSITION" {
		t.Fatalf("second settle: expected 409 INVALID_TRANSITION, got %d %+v", status, env.Error)
	}

	_, env = call(t, app, http.MethodGet, "/ledger", seekerToken, nil)
	entries := decode[[]domain.LedgerEntry](t, env)
	if len(entries) != 1 || entries[0].Signed() != -45 {
		t.Fatalf("unexpected ledger %+v", entries)
	}
}

func TestErrorEnvelope(t *testing.T) {
	app, metrics := newTestApp(t)

	_, env := call(t, app, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "Ana", "email": "ana@home.com", "password": "pw", "role": "SEEKER",
	})
	seekerToken := decode[authData](t, env).Auth.Token

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{"no token", http.MethodGet, "/jobs", "", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad token", http.MethodGet, "/jobs", "garbage", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"seeker accepts", http.MethodPost, "/jobs/x/accept", seekerToken, nil, http.StatusForbidden, "FORBIDDEN"},
		{"unknown job", http.MethodGet, "/jobs/missing", seekerToken, nil, http.StatusNotFound, "NOT_FOUND"},
		{"unknown worker", http.MethodPost, "/jobs", seekerToken, map[string]any{"workerId": "nobody"}, http.StatusNotFound, "NOT_FOUND"},
		{"bad category", http.MethodGet, "/workers?category=Astronaut", seekerToken, nil, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"wrong login", http.MethodPost, "/auth/login", "", map[string]any{"email": "ana@home.com", "role": "WORKER"}, http.StatusUnauthorized, "AUTHENTICATION_FAILED"},
		{"settle rating", http.MethodPost, "/jobs/x/settle", seekerToken, map[string]any{"rating": 9}, http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := call(t, app, tc.method, tc.path, tc.token, tc.body)
			if status != tc.status || env.Error == nil || env.Error.Code != tc.code {
				t.Fatalf("expected %d %s, got %d %+v", tc.status, tc.code, status, env.Error)
			}
		})
	}

	if metrics.ErrorCount("/jobs", http.MethodGet, "UNAUTHORIZED") == 0 {
		t.Fatalf("expected errors to be counted")
	}
}

func TestOpenEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/health/live", "", nil)
	if status != http.StatusOK {
		t.Fatalf("live: %d", status)
	}
	status, _ = call(t, app, http.MethodGet, "/health/ready", "", nil)
	if status != http.StatusOK {
		t.Fatalf("ready: %d", status)
	}

	_, env := call(t, app, http.MethodGet, "/categories", "", nil)
	if cats := decode[[]string](t, env); len(cats) != len(domain.Categories()) {
		t.Fatalf("unexpected categories %v", cats)
	}

	status, _ = call(t, app, http.MethodPost, "/auth/logout", "", nil)
	if status != http.StatusNoContent {
		t.Fatalf("logout: %d", status)
	}
}

func TestWorkerEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	_, env := call(t, app, http.MethodPost, "/auth/login", "", map[string]any{"email": "sarah@work.com", "role": "WORKER"})
	token := decode[authData](t, env).Auth.Token

	status, env := call(t, app, http.MethodGet, "/auth/session", token, nil)
	if s := decode[struct {
		Session domain.Session `json:"session"`
	}](t, env); status != http.StatusOK || s.Session.Role != domain.RoleWorker {
		t.Fatalf("session: %d %+v", status, s)
	}

	status, env = call(t, app, http.MethodPatch, "/workers/me/availability", token, map[string]any{"toggle": true})
	if u := decode[domain.User](t, env); status != http.StatusOK || u.IsAvailable {
		t.Fatalf("toggle: %d %+v", status, u)
	}

	status, env = call(t, app, http.MethodGet, "/jobs", token, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard: %d", status)
	}
	if dash := decode[service.WorkerDashboard](t, env); len(dash.Pending)+len(dash.Active)+len(dash.History) != 0 {
		t.Fatalf("expected empty dashboard, got %+v", dash)
	}

	status, env = call(t, app, http.MethodPost, "/classify", token, map[string]any{"query": "my sink leaks"})
	if s := decode[classifier.Suggestion](t, env); status != http.StatusOK || s.Category != "Plumber" || s.EstimatedPrice != 30 {
		t.Fatalf("classify: %d %+v", status, s)
	}

	status, env = call(t, app, http.MethodPost, "/classify", token, map[string]any{"query": "  "})
	if status != http.StatusBadRequest || env.Error == nil {
		t.Fatalf("empty classify: expected 400, got %d", status)
	}
}

func TestReadyReportsClassifier(t *testing.T) {
	store := persistence.NewStore(persistence.NewMemoryBackend(), nil)
	cases := []struct {
		name string
		gen  classifier.Generator
		want string
	}{
		{"configured", stubGenerator{}, "ok"},
		{"no api key", nil, "unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			health := handlers.NewHealthHandler("skilllink", "test", "memory", store, nil, classifier.New(tc.gen, nil, 0))
			app.Get("/health/ready", health.Ready)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200 while the classifier degrades, got %d", resp.StatusCode)
			}
			var body struct {
				Dependencies map[string]string `json:"dependencies"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Dependencies["classifier"] != tc.want {
				t.Fatalf("expected classifier %q, got %+v", tc.want, body.Dependencies)
			}
		})
	}
}
