// Package auth handles user registration, credential checks, and bearer
// token issuance.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/realtydesk/realtydesk/internal/config"
	"github.com/realtydesk/realtydesk/internal/domain/user"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

// Service issues and verifies credentials for API users.
type Service struct {
	users  storage.UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	log    *logger.Logger
}

// New constructs an auth service from the auth configuration.
func New(users storage.UserStore, cfg config.AuthConfig, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	cost := cfg.BCryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    time.Duration(cfg.TokenTTLMinutes) * time.Minute,
		cost:   cost,
		log:    log,
	}
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return user.User{}, apperrors.BadRequest("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return user.User{}, apperrors.Internal("failed to hash password", err)
	}

	created, err := s.users.CreateUser(ctx, user.User{Username: username, PasswordHash: hash})
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("username", created.Username).Info("user registered")
	return created, nil
}

// Login checks the credentials and returns a signed bearer token. Unknown
// usernames and wrong passwords produce the same message so the response
// does not reveal which part failed.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", apperrors.BadRequest("username and password are required")
	}

	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.Unauthorized("invalid username or password")
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", apperrors.Unauthorized("invalid username or password")
	}

	token, err := s.issueToken(u.Username)
	if err != nil {
		return "", apperrors.Internal("failed to sign token", err)
	}
	s.log.WithField("username", u.Username).Info("user logged in")
	return token, nil
}

func (s *Service) issueToken(username string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies a bearer token and returns the username it was
// issued to.
func (s *Service) ParseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", apperrors.InvalidToken(err)
	}
	if !parsed.Valid {
		return "", apperrors.InvalidToken(errors.New("token rejected"))
	}
	return claims.Subject, nil
}
