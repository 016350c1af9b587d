package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"coaching/attendance/foundation/web"
	"coaching/attendance/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(t *testing.T) (*web.App, *auth.Auth) {
	t.Helper()

	a, err := auth.New("k")
	require.NoError(t, err)

	app := web.NewApp(zap.NewNop().Sugar(), Logger())
	app.Use(CORS([]string{"https://school.example"}))
	app.Get("/who", func(c *web.Context) error {
		claims, err := auth.GetClaims(c.Ctx)
		if err != nil {
			return c.RespondError(err)
		}
		return c.Respond(map[string]interface{}{"data": claims.UserId, "trace": TraceID(c.Ctx), "status": true}, http.StatusOK)
	}, Authenticate(a, auth.RoleAdmin))

	return app, a
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	app, a := newApp(t)

	admin, err := a.GenerateToken(auth.Claims{UserId: 3, TenantId: 1, Role: auth.RoleAdmin})
	require.NoError(t, err)
	teacher, err := a.GenerateToken(auth.Claims{UserId: 4, TenantId: 1, Role: auth.RoleTeacher})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + teacher, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		assert.Equal(t, tt.want, rec.Code, tt.name)
		assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"), tt.name)
	}
}

func TestLoggerKeepsCallerTraceID(t *testing.T) {
	t.Parallel()
	app, _ := newApp(t)

	const id = "7f1c1a4e-3d7b-4c38-9a65-0b1f6f1f2c11"
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-Trace-Id", id)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get("X-Trace-Id"))
}

func TestCORS(t *testing.T) {
	t.Parallel()
	app, _ := newApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/who", nil)
	req.Header.Set("Origin", "https://school.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, "https://school.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/who", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
