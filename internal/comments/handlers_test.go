package comments

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microhub/internal/auth"
	"microhub/internal/moderation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentsHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, err := auth.NewManager(auth.ManagerConfig{Secret: "secret", TTL: time.Hour})
	require.NoError(t, err)
	tok, err := m.Issue(time.Now(), bo)
	require.NoError(t, err)

	repo := NewMemoryRepo()
	r := gin.New()
	Handler{
		Service:     NewService(repo, moderation.NewGate(nil, nil), nil),
		RequireAuth: auth.RequireBearer(auth.NewLocalVerifier(m)),
	}.Register(r)

	send := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/comments", `{"postId":1,"text":"hi"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(http.MethodPost, "/comments", `{"postId":1,"text":"hi"}`, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(http.MethodPost, "/comments", `{"text":"hi"}`, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodGet, "/comments/post/1", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authorName":"2"`)

	w = send(http.MethodGet, "/comments/post/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodGet, "/comments/user/count", "", tok)
	assert.Equal(t, `{"count":1}`, w.Body.String())

	w = send(http.MethodDelete, "/comments/abc", "", tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodDelete, "/comments/1", "", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, repo.Len())
}
