package usersvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/usersdemo/api-contract-tests/servicedef"
)

// tokenLeeway absorbs small clock differences between the service and
// whoever minted the token.
const tokenLeeway = 30 * time.Second

// TokenIssuer mints and verifies HMAC-SHA256 bearer tokens. The token's
// subject claim carries the user's email.
type TokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	timeFunc func() time.Time
}

// NewTokenIssuer creates a TokenIssuer signing with secret. Tokens expire
// after ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		ttl:      ttl,
		timeFunc: time.Now,
	}
}

// Issue returns a signed token for the given email.
func (t *TokenIssuer) Issue(email string) (string, error) {
	now := t.timeFunc()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the email it
// was issued for.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithTimeFunc(t.timeFunc),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

type contextKey string

const userEmailKey contextKey = "userEmail"

// requireUser authenticates the request, trying a bearer token first and
// falling back to HTTP basic auth. Unauthenticated requests get a 401 that
// advertises both schemes.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := s.authenticate(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer, Basic")
			s.respondJSON(w, http.StatusUnauthorized, servicedef.ErrorRep{Error: "Not authenticated"})
			return
		}
		ctx := context.WithValue(r.Context(), userEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) authenticate(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r); ok {
		email, err := s.tokens.Verify(token)
		if err == nil {
			if _, err := s.store.GetByEmail(r.Context(), email); err == nil {
				return email, true
			}
			s.logger.Debug("bearer token for unknown user", "email", email)
		} else {
			s.logger.Debug("bearer token rejected", "error", err)
		}
	}
	if username, password, ok := r.BasicAuth(); ok {
		user, err := s.store.Authenticate(r.Context(), username, password)
		if err == nil {
			return user.Email, true
		}
		s.logger.Debug("basic auth rejected", "username", username)
	}
	return "", false
}

// userEmail returns the authenticated email placed in the context by
// requireUser.
func userEmail(r *http.Request) string {
	email, _ := r.Context().Value(userEmailKey).(string)
	return email
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}
