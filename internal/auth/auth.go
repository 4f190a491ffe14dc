package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName    = "ldtab_session"
	SessionExpiry = 24 * time.Hour
)

// randReader is the entropy source for passwords and secrets
var randReader io.Reader = rand.Reader

var (
	ErrInvalidToken     = errors.New("invalid session token")
	ErrExpiredToken     = errors.New("session token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Debate-themed words for password generation
var passwordWords = []string{
	"resolved", "value", "criterion", "affirm", "negate",
	"rebuttal", "flow", "ballot", "judge", "podium",
	"contention", "framework", "impact", "warrant", "crossex",
	"prep", "speech", "rostrum", "gavel",
}

// Claims identify a session. The tournament is looked up from the profile on
// each request, so joining a tournament does not require a new token.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// UserID returns the session's user id
func (c *Claims) UserID() string { return c.Subject }

// Auth issues and validates session tokens and checks the admin password
type Auth struct {
	secret       []byte
	ttl          time.Duration
	passwordHash []byte
}

// New creates an Auth signing tokens with secret. An empty password disables
// the admin password check.
func New(secret, adminPassword string, ttl time.Duration) (*Auth, error) {
	if ttl <= 0 {
		ttl = SessionExpiry
	}
	a := &Auth{secret: []byte(secret), ttl: ttl}
	if adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing admin password: %w", err)
		}
		a.passwordHash = hash
	}
	return a, nil
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() (string, error) {
	words := make([]string, 3)
	for i := range words {
		n, err := randomInt(len(passwordWords))
		if err != nil {
			return "", err
		}
		words[i] = passwordWords[n]
	}
	return strings.Join(words, "-"), nil
}

// GenerateSecret returns a random hex string for signing tokens
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return fmt.Sprintf("%x", b), nil
}

// PasswordRequired reports whether admin sessions need a password
func (a *Auth) PasswordRequired() bool {
	return len(a.passwordHash) > 0
}

// CheckAdminPassword validates the admin password
func (a *Auth) CheckAdminPassword(password string) bool {
	if !a.PasswordRequired() {
		return true
	}
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

// Issue signs a token for the given identity
func (a *Auth) Issue(userID, name, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name: name,
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a signed token and returns its claims
func (a *Auth) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest reads the bearer token, the session cookie or the token
// query parameter, in that order
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

type contextKey struct{}

// WithClaims returns a context carrying claims
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the claims stored by Middleware, if any
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok
}

// Middleware attaches the claims of a valid token to the request context.
// Requests without a valid token pass through unauthenticated.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := TokenFromRequest(r); tok != "" {
			if claims, err := a.Parse(tok); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthAPI middleware for API endpoints (returns 401)
func RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - start a session first"}`))
	})
}

// SetSessionCookie sets the session cookie on the response
func (a *Auth) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// randomInt returns a uniformly random int in [0, max)
func randomInt(max int) (int, error) {
	n, err := rand.Int(randReader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random number: %w", err)
	}
	return int(n.Int64()), nil
}
