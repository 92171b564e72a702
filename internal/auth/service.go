// Package auth issues and verifies JWT access tokens for the single seeded
// demo user.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Token struct {
	AccessToken  string `json:"access_token"`
	ExpiresInSec int64  `json:"expires_in_sec"`
}

type Service struct {
	secret       []byte
	accessTTL    time.Duration
	email        string
	passwordHash []byte
	now          func() time.Time
}

func NewService(secret string, accessTTL time.Duration, email, password string) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo user password: %w", err)
	}
	return &Service{
		secret:       []byte(secret),
		accessTTL:    accessTTL,
		email:        email,
		passwordHash: hash,
		now:          time.Now,
	}, nil
}

func (s *Service) Login(email, password string) (Token, error) {
	if email != s.email {
		return Token{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return Token{}, ErrUnauthorized
	}
	now := s.now().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "video-editor",
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign access token: %w", err)
	}
	return Token{
		AccessToken:  access,
		ExpiresInSec: int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *Service) ParseAccess(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrUnauthorized
	}
	return *claims, nil
}
