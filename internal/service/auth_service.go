package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/psds-microservice/arm-service-desk/internal/errs"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator is what the HTTP layer needs from AuthService.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.LoginResult, error)
	Verify(token string) (model.Identity, error)
}

type tokenClaims struct {
	Admin bool `json:"adm"`
	jwt.RegisteredClaims
}

type AuthService struct {
	store  store.Store
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type AuthOption func(*AuthService)

// WithHashCost overrides the bcrypt cost used when seeding accounts.
func WithHashCost(cost int) AuthOption {
	return func(a *AuthService) { a.cost = cost }
}

func NewAuthService(s store.Store, secret string, ttl time.Duration, opts ...AuthOption) *AuthService {
	a := &AuthService{
		store:  s,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AuthService) Login(ctx context.Context, username, password string) (model.LoginResult, error) {
	u, err := a.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return model.LoginResult{}, errs.ErrInvalidCredentials
		}
		return model.LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.LoginResult{}, errs.ErrInvalidCredentials
	}
	token, err := a.sign(u)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return model.LoginResult{
		Token:    token,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		Message:  "logged in",
	}, nil
}

func (a *AuthService) sign(u *model.User) (string, error) {
	now := a.now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Admin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}).SignedString(a.secret)
}

// Verify checks the token signature and expiry and returns the identity it
// was issued for.
func (a *AuthService) Verify(token string) (model.Identity, error) {
	var c tokenClaims
	t, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !t.Valid || c.Subject == "" {
		return model.Identity{}, errs.ErrInvalidToken
	}
	return model.Identity{Username: c.Subject, IsAdmin: c.Admin}, nil
}

// Seed creates the accounts listed in users ("name:password[:admin],...") when
// the user table is empty. It returns how many accounts were created.
func (a *AuthService) Seed(ctx context.Context, users string) (int, error) {
	n, err := a.store.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	created := 0
	for _, entry := range strings.Split(users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return created, fmt.Errorf("%w: seed user %q must be name:password[:admin]", errs.ErrValidation, entry)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(parts[1]), a.cost)
		if err != nil {
			return created, fmt.Errorf("hash password: %w", err)
		}
		u := &model.User{
			Username:     parts[0],
			PasswordHash: string(hash),
			IsAdmin:      len(parts) > 2 && parts[2] == "admin",
		}
		if err := a.store.CreateUser(ctx, u); err != nil {
			return created, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		created++
	}
	return created, nil
}
