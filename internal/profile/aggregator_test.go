package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"microhub/internal/apperr"
	"microhub/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves the four endpoints the aggregator reads, checking the bearer token.
func fakeUpstream(t *testing.T, token string, failPath string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	bodies := map[string]string{
		"/users/me":            `{"id":7,"username":"ann","email":"ann@example.com"}`,
		"/posts/count/mine":    `{"count":3}`,
		"/likes/user/count":    `{"count":5}`,
		"/comments/user/count": `{"count":2}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path == failPath {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func sameHost(url string) Upstreams {
	return Upstreams{UsersURL: url, PostsURL: url + "/", LikesURL: url, CommentsURL: url}
}

func TestSummary_MergesAllCounts(t *testing.T) {
	srv, hits := fakeUpstream(t, "tok", "")
	a := NewAggregator(srv.Client(), sameHost(srv.URL))

	ctx := auth.WithIdentity(context.Background(), auth.Identity{ID: 7}, "tok")
	s, err := a.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		ID: 7, Username: "ann", Email: "ann@example.com",
		PostsCount: 3, LikesGivenCount: 5, CommentsCount: 2,
	}, s)
	assert.EqualValues(t, 4, hits.Load())
}

func TestSummary_AnyFailureFailsWhole(t *testing.T) {
	srv, _ := fakeUpstream(t, "tok", "/likes/user/count")
	a := NewAggregator(srv.Client(), sameHost(srv.URL))

	ctx := auth.WithIdentity(context.Background(), auth.Identity{ID: 7}, "tok")
	s, err := a.Summary(ctx)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.Equal(t, Summary{}, s)
}

func TestSummary_RunsCallsConcurrently(t *testing.T) {
	var inflight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`{"count":1,"id":1}`))
	}))
	defer srv.Close()

	a := NewAggregator(srv.Client(), sameHost(srv.URL))
	_, err := a.Summary(auth.WithIdentity(context.Background(), auth.Identity{ID: 1}, "tok"))
	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestSummary_RequiresToken(t *testing.T) {
	a := NewAggregator(nil, Upstreams{})
	_, err := a.Summary(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestProfileHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, err := auth.NewManager(auth.ManagerConfig{Secret: "secret", TTL: time.Hour})
	require.NoError(t, err)
	tok, err := m.Issue(time.Now(), auth.Identity{ID: 7, Username: "ann", Email: "ann@example.com"})
	require.NoError(t, err)

	srv, _ := fakeUpstream(t, tok, "")
	r := gin.New()
	Handler{
		Aggregator:  NewAggregator(srv.Client(), sameHost(srv.URL)),
		RequireAuth: auth.RequireBearer(auth.NewLocalVerifier(m)),
	}.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/profile/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":7,"username":"ann","email":"ann@example.com","postsCount":3,"likesGivenCount":5,"commentsCount":2}`, w.Body.String())
}
