package journal

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/middleware"
)

const testSecret = "journal-test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	repo := newMemRepo(time.Now)
	svc := NewJournalService(repo, echoSummarizer{}, calendar.FixedClock(base, time.UTC))
	plugin := &JournalPlugin{service: svc}

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	api := app.Group("/api/v1", middleware.JWTProtected(&config.Config{JWTSecret: testSecret}))
	plugin.RegisterRoutes(api)
	return app
}

func bearer(t *testing.T, user uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + s
}

func do(t *testing.T, app *fiber.App, method, path, auth, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func TestHandlersRequireToken(t *testing.T) {
	app := newTestApp(t)
	if code, _ := do(t, app, http.MethodGet, "/api/v1/journal", "", ""); code != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}

func TestHandlersLifecycle(t *testing.T) {
	app := newTestApp(t)
	owner := bearer(t, uuid.New())
	stranger := bearer(t, uuid.New())

	code, body := do(t, app, http.MethodPost, "/api/v1/journal", owner, `{"content":"sunny walk","mood":"Great"}`)
	if code != fiber.StatusCreated {
		t.Fatalf("create status = %d, body %s", code, body)
	}
	var created Entry
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		body   string
		want   int
	}{
		{"invalid body", http.MethodPost, "/api/v1/journal", owner, `{"content":`, fiber.StatusBadRequest},
		{"invalid mood", http.MethodPost, "/api/v1/journal", owner, `{"content":"x","mood":"Meh"}`, fiber.StatusBadRequest},
		{"list", http.MethodGet, "/api/v1/journal?limit=5", owner, "", fiber.StatusOK},
		{"search", http.MethodGet, "/api/v1/journal/search?q=sun", owner, "", fiber.StatusOK},
		{"short search", http.MethodGet, "/api/v1/journal/search?q=s", owner, "", fiber.StatusBadRequest},
		{"get", http.MethodGet, "/api/v1/journal/" + created.ID.String(), owner, "", fiber.StatusOK},
		{"get bad id", http.MethodGet, "/api/v1/journal/nope", owner, "", fiber.StatusBadRequest},
		{"get by stranger", http.MethodGet, "/api/v1/journal/" + created.ID.String(), stranger, "", fiber.StatusNotFound},
		{"update", http.MethodPut, "/api/v1/journal/" + created.ID.String(), owner, `{"content":"rainy walk"}`, fiber.StatusOK},
		{"summary", http.MethodPost, "/api/v1/journal/" + created.ID.String() + "/summary", owner, "", fiber.StatusOK},
		{"delete by stranger", http.MethodDelete, "/api/v1/journal/" + created.ID.String(), stranger, "", fiber.StatusNotFound},
		{"delete", http.MethodDelete, "/api/v1/journal/" + created.ID.String(), owner, "", fiber.StatusOK},
		{"get after delete", http.MethodGet, "/api/v1/journal/" + created.ID.String(), owner, "", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, body := do(t, app, tt.method, tt.path, tt.auth, tt.body); code != tt.want {
				t.Errorf("status = %d, want %d, body %s", code, tt.want, body)
			}
		})
	}
}

func TestCreateHandlerForDeletedUser(t *testing.T) {
	repo := newMemRepo(time.Now)
	svc := NewJournalService(repo, echoSummarizer{}, calendar.FixedClock(base, time.UTC))
	plugin := &JournalPlugin{service: svc}
	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	plugin.RegisterRoutes(app.Group("/api/v1", middleware.JWTProtected(&config.Config{JWTSecret: testSecret})))

	user := uuid.New()
	repo.deleted[user] = true

	code, raw := do(t, app, http.MethodPost, "/api/v1/journal", bearer(t, user), `{"content":"late note","mood":"Okay"}`)
	if code != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401, body %s", code, raw)
	}
	if len(repo.byID) != 0 {
		t.Errorf("%d entries stored, want 0", len(repo.byID))
	}
}
