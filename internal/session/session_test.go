package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/psds-microservice/arm-service-desk/internal/gateway"
	"github.com/psds-microservice/arm-service-desk/internal/session"
	"github.com/psds-microservice/arm-service-desk/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstablishRestoreClear(t *testing.T) {
	ts := testserver.New(t)
	ctx := context.Background()
	kv := session.NewMemoryKV()
	store := session.NewStore(kv, gateway.NewClient(ts.APIURL()))

	_, err := store.Restore(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)

	sess, err := store.Establish(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())
	assert.NotEmpty(t, sess.Credential)

	restored, err := store.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.Credential, restored.Credential)
	assert.Equal(t, *sess.Identity, *restored.Identity)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = store.Restore(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestEstablishFailures(t *testing.T) {
	ts := testserver.New(t)
	ctx := context.Background()
	kv := session.NewMemoryKV()
	store := session.NewStore(kv, gateway.NewClient(ts.APIURL()))

	_, err := store.Establish(ctx, "user", "bad")
	var authErr *session.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "invalid credentials", authErr.Message)
	assert.True(t, gateway.IsAPIError(err, http.StatusUnauthorized))

	_, err = store.Restore(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession, "failed login persists nothing")

	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()
	_, err = session.NewStore(kv, gateway.NewClient(url)).Establish(ctx, "user", "user123")
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, gateway.ConnectionFailed, authErr.Message)
}

func TestRestoreRejectsIncompleteState(t *testing.T) {
	ctx := context.Background()
	cases := map[string]map[string]string{
		"token without identity": {"arm_token": "tok"},
		"malformed identity":     {"arm_token": "tok", "arm_user": "{not json"},
		"identity without name":  {"arm_token": "tok", "arm_user": `{"username":"","is_admin":true}`},
		"identity without token": {"arm_user": `{"username":"user"}`},
		"empty token":            {"arm_token": "", "arm_user": `{"username":"user"}`},
	}
	for name, state := range cases {
		t.Run(name, func(t *testing.T) {
			kv := session.NewMemoryKV()
			for k, v := range state {
				require.NoError(t, kv.Set(ctx, k, v))
			}
			_, err := session.NewStore(kv, nil).Restore(ctx)
			assert.ErrorIs(t, err, session.ErrNoSession)
		})
	}
}

func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	kv, err := session.OpenSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "arm_token", "a"))
	require.NoError(t, kv.Set(ctx, "arm_token", "b"))
	require.NoError(t, kv.Set(ctx, "arm_user", `{"username":"user","is_admin":false}`))
	require.NoError(t, kv.Close())

	kv, err = session.OpenSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()

	sess, err := session.NewStore(kv, nil).Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", sess.Credential)
	assert.Equal(t, "user", sess.Identity.Username)

	require.NoError(t, kv.Delete(ctx, "arm_token"))
	_, err = kv.Get(ctx, "arm_token")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)
}
