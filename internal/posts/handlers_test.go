package posts

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microhub/internal/auth"
	"microhub/internal/moderation"

	"github.com/gin-gonic/gin"
)

func newPostsRouter(t *testing.T, chk moderation.Checker) (*gin.Engine, *MemoryRepo, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := auth.NewManager(auth.ManagerConfig{Secret: "secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	repo := NewMemoryRepo()
	r := gin.New()
	Handler{
		Service:     NewService(repo, moderation.NewGate(chk, nil), nil),
		RequireAuth: auth.RequireBearer(auth.NewLocalVerifier(m)),
	}.Register(r)
	return r, repo, m
}

func tokenFor(t *testing.T, m *auth.Manager, id auth.Identity) string {
	t.Helper()
	tok, err := m.Issue(time.Now(), id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func send(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostsHTTP_CreateRequiresBearer(t *testing.T) {
	chk := &fakeChecker{verdict: moderation.Verdict{Approved: true}}
	r, repo, _ := newPostsRouter(t, chk)

	w := send(r, http.MethodPost, "/posts", `{"title":"t","text":"x"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if repo.Len() != 0 || len(chk.got) != 0 {
		t.Fatalf("nothing may run before authentication")
	}
}

func TestPostsHTTP_CreateAndFlagged(t *testing.T) {
	chk := &fakeChecker{verdict: moderation.Verdict{Approved: true}}
	r, repo, m := newPostsRouter(t, chk)
	tok := tokenFor(t, m, auth.Identity{ID: 1, Username: "ana"})

	w := send(r, http.MethodPost, "/posts", `{"title":"t","text":"x","topics":["go"]}`, tok)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	w = send(r, http.MethodPost, "/posts", `{"title":"t"}`, tok)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing text, got %d", w.Code)
	}

	chk.verdict = moderation.Verdict{Approved: false, Flagged: true, FlaggedCategories: []string{"violence"}}
	w = send(r, http.MethodPost, "/posts", `{"title":"t","text":"x"}`, tok)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"flaggedCategories":["violence"]`) {
		t.Fatalf("expected moderation rejection, got %d %s", w.Code, w.Body.String())
	}
	if repo.Len() != 1 {
		t.Fatalf("flagged post must not be stored, have %d", repo.Len())
	}

	w = send(r, http.MethodGet, "/posts/count/mine", "", tok)
	if w.Code != http.StatusOK || w.Body.String() != `{"count":1}` {
		t.Fatalf("count: %d %s", w.Code, w.Body.String())
	}
}

func TestPostsHTTP_DeleteByNonOwner(t *testing.T) {
	r, repo, m := newPostsRouter(t, nil)
	owner := tokenFor(t, m, auth.Identity{ID: 1})
	other := tokenFor(t, m, auth.Identity{ID: 2})

	if w := send(r, http.MethodPost, "/posts", `{"title":"t","text":"x"}`, owner); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	if w := send(r, http.MethodDelete, "/posts/1", "", other); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", w.Code)
	}
	if repo.Len() != 1 {
		t.Fatalf("record must remain")
	}
	if w := send(r, http.MethodDelete, "/posts/abc", "", owner); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
	if w := send(r, http.MethodDelete, "/posts/1", "", owner); w.Code != http.StatusOK {
		t.Fatalf("owner delete: %d", w.Code)
	}
}
