package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"microhub/internal/auth"
	"microhub/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, service string, env map[string]string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/microhub")
	for k, v := range env {
		t.Setenv(k, v)
	}
	a, err := New(service)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestApp_LocalGateAndQuota(t *testing.T) {
	a := newTestApp(t, config.ServicePosts, map[string]string{
		"JWT_VERIFIER":                 "local",
		"JWT_SECRET":                   "secret",
		"RATE_LIMIT_WRITES_PER_MINUTE": "1",
	})
	assert.Equal(t, "microhub-posts", a.Name)

	requireAuth, err := a.RequireAuth()
	require.NoError(t, err)
	a.Router.POST("/things", requireAuth, a.WriteQuota(context.Background()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	m, err := a.Tokens()
	require.NoError(t, err)
	tok, err := m.Issue(time.Now(), auth.Identity{ID: 1, Username: "ann"})
	require.NoError(t, err)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/things", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		a.Router.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestApp_ModerationDisabledWithoutURL(t *testing.T) {
	a := newTestApp(t, config.ServiceComments, map[string]string{
		"JWT_VERIFIER": "local",
		"JWT_SECRET":   "secret",
	})
	g := a.ModerationGate()
	require.NoError(t, g.Moderate(context.Background(), "anything", "comment"))
	assert.Equal(t, "7", a.Names().DisplayName(context.Background(), 7))
}

func TestApp_RemoteVerifierNeedsUsersURL(t *testing.T) {
	t.Setenv("JWT_VERIFIER", "remote")
	t.Setenv("UPSTREAM_USERS_URL", "")
	_, err := New(config.ServiceLikes)
	assert.Error(t, err)
}
