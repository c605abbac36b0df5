// Package session keeps the desk credential and identity between CLI runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/psds-microservice/arm-service-desk/internal/gateway"
	"github.com/psds-microservice/arm-service-desk/internal/model"
)

const (
	keyToken = "arm_token"
	keyUser  = "arm_user"
)

// ErrNoSession means nothing usable is persisted: the user is logged out.
var ErrNoSession = errors.New("not logged in")

// AuthError is a failed login. Message is what the user should see.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// Authenticator exchanges credentials for a token. *gateway.Client
// implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*model.LoginResult, error)
}

type Store struct {
	kv   KV
	auth Authenticator
}

func NewStore(kv KV, auth Authenticator) *Store {
	return &Store{kv: kv, auth: auth}
}

// Restore reads the persisted session without touching the network. A
// credential without a readable identity counts as logged out.
func (s *Store) Restore(ctx context.Context) (*model.Session, error) {
	token, err := s.kv.Get(ctx, keyToken)
	if errors.Is(err, ErrKeyNotFound) || (err == nil && token == "") {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keyToken, err)
	}
	raw, err := s.kv.Get(ctx, keyUser)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keyUser, err)
	}
	var id model.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, ErrNoSession
	}
	sess := &model.Session{Credential: token, Identity: &id}
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	return sess, nil
}

// Establish logs in through the gateway and persists the result.
func (s *Store) Establish(ctx context.Context, username, password string) (*model.Session, error) {
	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, &AuthError{Message: gateway.Message(err), Err: err}
	}
	sess := &model.Session{
		Credential: res.Token,
		Identity:   &model.Identity{Username: res.Username, IsAdmin: res.IsAdmin},
	}
	if !sess.Valid() {
		return nil, &AuthError{Message: "login response is missing the token or username"}
	}
	raw, err := json.Marshal(sess.Identity)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, keyToken, sess.Credential); err != nil {
		return nil, fmt.Errorf("save %s: %w", keyToken, err)
	}
	if err := s.kv.Set(ctx, keyUser, string(raw)); err != nil {
		return nil, fmt.Errorf("save %s: %w", keyUser, err)
	}
	return sess, nil
}

// Clear forgets the persisted session. Clearing twice is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyToken); err != nil {
		return err
	}
	return s.kv.Delete(ctx, keyUser)
}
