// Package testserver runs the desk API over the in-memory store for tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/arm-service-desk/internal/router"
	"github.com/psds-microservice/arm-service-desk/internal/service"
	"github.com/psds-microservice/arm-service-desk/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Users seeded into every test server: two standard users and one admin.
const Users = "user:user123,alice:alice123,admin:admin123:admin"

type TestServer struct {
	Server *httptest.Server
	Store  *store.Memory
	Auth   *service.AuthService
	Desk   *service.DeskService
}

func New(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	auth := service.NewAuthService(mem, "test-secret", time.Hour, service.WithHashCost(bcrypt.MinCost))
	_, err := auth.Seed(context.Background(), Users)
	require.NoError(t, err)
	desk := service.NewDeskService(mem, nil)

	server := httptest.NewServer(router.New(router.Deps{
		Auth: auth,
		Desk: desk,
		Log:  zerolog.Nop(),
	}))
	t.Cleanup(server.Close)

	return &TestServer{Server: server, Store: mem, Auth: auth, Desk: desk}
}

// APIURL is the base URL a desk client should be pointed at.
func (ts *TestServer) APIURL() string {
	return ts.Server.URL + "/api"
}

// Token logs in directly through the auth service.
func (ts *TestServer) Token(t *testing.T, username, password string) string {
	t.Helper()
	res, err := ts.Auth.Login(context.Background(), username, password)
	require.NoError(t, err)
	return res.Token
}
