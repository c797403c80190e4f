package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Config struct {
	// JWKSURL enables RS256 verification against the provider's published keys.
	JWKSURL string
	// HMACSecret enables HS256 verification with a shared secret. Meant for
	// local development; ignored when JWKSURL is set.
	HMACSecret string
	Issuer     string
	Audience   string
	CacheTTL   time.Duration
	HTTPClient *http.Client
}

// Authenticator verifies bearer tokens and extracts the caller's identity.
type Authenticator struct {
	parser  *jwt.Parser
	keyFunc func(ctx context.Context) jwt.Keyfunc
}

func New(cfg Config) (*Authenticator, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}

	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	a := &Authenticator{}

	switch {
	case cfg.JWKSURL != "":
		client := cfg.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 10 * time.Second}
		}

		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = time.Hour
		}

		keys := newKeySet(cfg.JWKSURL, ttl, client)

		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
		a.keyFunc = func(ctx context.Context) jwt.Keyfunc {
			return func(t *jwt.Token) (any, error) {
				kid, _ := t.Header["kid"].(string)
				return keys.key(ctx, kid)
			}
		}
	case cfg.HMACSecret != "":
		secret := []byte(cfg.HMACSecret)

		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		a.keyFunc = func(context.Context) jwt.Keyfunc {
			return func(*jwt.Token) (any, error) { return secret, nil }
		}
	default:
		return nil, fmt.Errorf("auth: either a JWKS URL or an HMAC secret is required")
	}

	a.parser = jwt.NewParser(opts...)

	return a, nil
}

// Verify checks the token signature and registered claims and returns the
// subject as the caller's identity.
func (a *Authenticator) Verify(ctx context.Context, raw string) (Identity, error) {
	var claims jwt.RegisteredClaims

	if _, err := a.parser.ParseWithClaims(raw, &claims, a.keyFunc(ctx)); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrUnauthenticated)
	}

	return Identity{UserID: claims.Subject}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// identity of the others in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		id, err := a.Verify(r.Context(), raw)
		if err != nil {
			slog.DebugContext(r.Context(), "rejected token", "error", err)
			unauthorized(w)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}
