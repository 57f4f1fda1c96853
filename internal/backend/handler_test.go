package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/notify"
)

func mustStartMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return mr, rdb
}

func newTestServer(t *testing.T) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()
	mr, rdb := mustStartMiniRedis(t)
	h := NewHandler(NewRedisRepository(rdb), time.Hour, zerolog.Nop())
	ts := httptest.NewServer(NewRouter(h))
	t.Cleanup(ts.Close)
	return ts, mr
}

func login(t *testing.T, ts *httptest.Server) domain.LoginRes {
	t.Helper()
	resp, err := http.Post(ts.URL+"/login", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res domain.LoginRes
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func sessionStatus(t *testing.T, ts *httptest.Server, token string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginIssuesSessionWithTTL(t *testing.T) {
	ts, mr := newTestServer(t)

	res := login(t, ts)
	require.NotEmpty(t, res.AuthToken)
	require.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	key := authKey(res.AuthToken)
	require.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.True(t, ttl > 0 && ttl <= time.Hour, "unexpected TTL %v", ttl)

	assert.Equal(t, http.StatusNoContent, sessionStatus(t, ts, res.AuthToken))
}

func TestLogoutRevokesSession(t *testing.T) {
	ts, mr := newTestServer(t)
	res := login(t, ts)

	err := notify.NewClient(ts.URL, time.Second).Logout(context.Background(), res.AuthToken)
	require.NoError(t, err)

	assert.False(t, mr.Exists(authKey(res.AuthToken)))
	assert.False(t, mr.Exists(refreshKey(res.RefreshToken)))
	assert.Equal(t, http.StatusUnauthorized, sessionStatus(t, ts, res.AuthToken))
}

func TestLogoutAnswersTheSameWhateverTheToken(t *testing.T) {
	ts, _ := newTestServer(t)
	res := login(t, ts)

	for _, token := range []string{"", "unknown", res.AuthToken, res.AuthToken} {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/logout", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, "token %q", token)
	}
}

func TestSessionRequiresBearer(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/session")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRepository_Revoke(t *testing.T) {
	_, rdb := mustStartMiniRedis(t)
	repo := NewRedisRepository(rdb)
	ctx := context.Background()

	s := Session{ID: "id-1", AuthToken: "auth-1", RefreshToken: "refresh-1"}
	require.NoError(t, repo.Create(ctx, s, time.Minute))

	got, err := repo.Lookup(ctx, "auth-1")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, repo.Revoke(ctx, "auth-1"))
	_, err = repo.Lookup(ctx, "auth-1")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	err = repo.Revoke(ctx, "auth-1")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, Session, time.Duration) error {
	return errors.New("redis down")
}
func (failingRepo) Lookup(context.Context, string) (Session, error) {
	return Session{}, errors.New("redis down")
}
func (failingRepo) Revoke(context.Context, string) error { return errors.New("redis down") }

func TestHandler_StoreFailures(t *testing.T) {
	h := NewHandler(failingRepo{}, 0, zerolog.Nop())
	router := NewRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer x")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
