package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func TestTokenVerifier(t *testing.T) {
	v, err := NewTokenVerifier(testSecret)
	require.NoError(t, err)

	token, err := v.Issue("user_1", time.Hour)
	require.NoError(t, err)

	userID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", userID)
}

func TestTokenVerifierRejects(t *testing.T) {
	v, err := NewTokenVerifier(testSecret)
	require.NoError(t, err)

	expired, err := v.Issue("user_1", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenVerifier("another-secret-of-length")
	require.NoError(t, err)
	foreign, err := other.Issue("user_1", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := noSub.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = v.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenVerifier("short")
	assert.Error(t, err)
}

func TestHTTPDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/users/u1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"u1","name":"Asha","username":"asha","imageUrl":"http://img/a.png"}`))
		case "/users/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL+"/", "key", time.Second)

	p, err := d.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, Profile{ID: "u1", Name: "Asha", Username: "asha", ImageURL: "http://img/a.png"}, p)

	_, err = d.Profile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = d.Profile(context.Background(), "boom")
	assert.Error(t, err)
}

type countingDirectory struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (d *countingDirectory) Profile(_ context.Context, userID string) (Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.fail {
		return Profile{}, errors.New("down")
	}
	return Profile{ID: userID, Name: "N " + userID}, nil
}

type mapCache struct {
	profiles map[string]Profile
}

func (c *mapCache) Get(_ context.Context, userID string) (Profile, bool, error) {
	p, ok := c.profiles[userID]
	return p, ok, nil
}

func (c *mapCache) Set(_ context.Context, p Profile, _ time.Duration) error {
	c.profiles[p.ID] = p
	return nil
}

func TestCachedDirectory(t *testing.T) {
	next := &countingDirectory{}
	shared := &mapCache{profiles: map[string]Profile{}}
	d, err := NewCachedDirectory(next, 10, time.Minute, shared, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p, err := d.Profile(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "N u1", p.Name)
	}
	assert.Equal(t, 1, next.calls)
	assert.Contains(t, shared.profiles, "u1")

	// a second instance warms from the shared cache
	d2, err := NewCachedDirectory(next, 10, time.Minute, shared, nil)
	require.NoError(t, err)
	_, err = d2.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestCachedDirectoryDoesNotCacheFailures(t *testing.T) {
	next := &countingDirectory{fail: true}
	d, err := NewCachedDirectory(next, 10, time.Minute, nil, nil)
	require.NoError(t, err)

	_, err = d.Profile(context.Background(), "u1")
	assert.Error(t, err)
	_, err = d.Profile(context.Background(), "u1")
	assert.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestAnonymousDirectory(t *testing.T) {
	p, err := AnonymousDirectory{}.Profile(context.Background(), "u9")
	require.NoError(t, err)
	assert.Equal(t, Anonymous("u9"), p)
	assert.Equal(t, "Anonymous", p.Name)
}
