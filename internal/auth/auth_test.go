package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budget/internal/auth"
)

const (
	secret   = "dev-secret"
	issuer   = "https://id.example.com/"
	audience = "budget-api"
)

func claims(mutate func(c *jwt.RegisteredClaims)) jwt.RegisteredClaims {
	c := jwt.RegisteredClaims{
		Subject:   "user_1",
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	if mutate != nil {
		mutate(&c)
	}

	return c
}

func hs256(t *testing.T, c jwt.RegisteredClaims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)

	return s
}

func hmacAuthenticator(t *testing.T) *auth.Authenticator {
	t.Helper()

	a, err := auth.New(auth.Config{HMACSecret: secret, Issuer: issuer, Audience: audience})
	require.NoError(t, err)

	return a
}

func TestNew_RequiresKeySource(t *testing.T) {
	_, err := auth.New(auth.Config{})
	assert.Error(t, err)
}

func TestVerify_HS256(t *testing.T) {
	type testCase struct {
		name    string
		token   func(t *testing.T) string
		wantErr bool
	}

	tests := []testCase{
		{
			name:  "Valid",
			token: func(t *testing.T) string { return hs256(t, claims(nil)) },
		},
		{
			name: "Expired",
			token: func(t *testing.T) string {
				return hs256(t, claims(func(c *jwt.RegisteredClaims) {
					c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				}))
			},
			wantErr: true,
		},
		{
			name: "MissingExpiry",
			token: func(t *testing.T) string {
				return hs256(t, claims(func(c *jwt.RegisteredClaims) { c.ExpiresAt = nil }))
			},
			wantErr: true,
		},
		{
			name: "WrongIssuer",
			token: func(t *testing.T) string {
				return hs256(t, claims(func(c *jwt.RegisteredClaims) { c.Issuer = "https://evil.example.com/" }))
			},
			wantErr: true,
		},
		{
			name: "WrongAudience",
			token: func(t *testing.T) string {
				return hs256(t, claims(func(c *jwt.RegisteredClaims) { c.Audience = jwt.ClaimStrings{"other"} }))
			},
			wantErr: true,
		},
		{
			name: "MissingSubject",
			token: func(t *testing.T) string {
				return hs256(t, claims(func(c *jwt.RegisteredClaims) { c.Subject = "" }))
			},
			wantErr: true,
		},
		{
			name: "WrongSecret",
			token: func(t *testing.T) string {
				s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(nil)).SignedString([]byte("nope"))
				require.NoError(t, err)

				return s
			},
			wantErr: true,
		},
		{
			name: "AlgNone",
			token: func(t *testing.T) string {
				s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims(nil)).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)

				return s
			},
			wantErr: true,
		},
		{
			name:    "Garbage",
			token:   func(*testing.T) string { return "not.a.jwt" },
			wantErr: true,
		},
	}

	a := hmacAuthenticator(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Verify(context.Background(), tt.token(t))

			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrUnauthenticated)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "user_1", id.UserID)
		})
	}
}

func TestMiddleware(t *testing.T) {
	a := hmacAuthenticator(t)

	var seen auth.Identity

	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		require.True(t, ok)

		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	type testCase struct {
		name   string
		header string
		want   int
	}

	tests := []testCase{
		{name: "Valid", header: "Bearer " + hs256(t, claims(nil)), want: http.StatusNoContent},
		{name: "LowercaseScheme", header: "bearer " + hs256(t, claims(nil)), want: http.StatusNoContent},
		{name: "Missing", header: "", want: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic dXNlcjpwYXNz", want: http.StatusUnauthorized},
		{name: "EmptyToken", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "Invalid", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			} else {
				assert.Equal(t, "user_1", seen.UserID)
			}
		})
	}
}

type jwksServer struct {
	*httptest.Server
	hits atomic.Int32

	mu   sync.Mutex
	keys map[string]*rsa.PrivateKey
}

func (s *jwksServer) setKeys(keys map[string]*rsa.PrivateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = keys
}

func newJWKSServer(t *testing.T, keys map[string]*rsa.PrivateKey) *jwksServer {
	t.Helper()

	s := &jwksServer{keys: keys}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.hits.Add(1)

		type jwk struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			Use string `json:"use"`
			Alg string `json:"alg"`
			N   string `json:"n"`
			E   string `json:"e"`
		}

		var doc struct {
			Keys []jwk `json:"keys"`
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		for kid, k := range s.keys {
			doc.Keys = append(doc.Keys, jwk{
				Kty: "RSA",
				Kid: kid,
				Use: "sig",
				Alg: "RS256",
				N:   base64.RawURLEncoding.EncodeToString(k.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.E)).Bytes()),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(s.Close)

	return s
}

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return k
}

func rs256(t *testing.T, kid string, key *rsa.PrivateKey, c jwt.RegisteredClaims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	tok.Header["kid"] = kid

	s, err := tok.SignedString(key)
	require.NoError(t, err)

	return s
}

func TestVerify_RS256ThroughJWKS(t *testing.T) {
	key := rsaKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PrivateKey{"k1": key})

	a, err := auth.New(auth.Config{JWKSURL: srv.URL, Issuer: issuer, Audience: audience, CacheTTL: time.Hour})
	require.NoError(t, err)

	id, err := a.Verify(context.Background(), rs256(t, "k1", key, claims(nil)))
	require.NoError(t, err)
	assert.Equal(t, "user_1", id.UserID)

	_, err = a.Verify(context.Background(), rs256(t, "k1", key, claims(nil)))
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load(), "keys are cached")

	_, err = a.Verify(context.Background(), rs256(t, "k1", rsaKey(t), claims(nil)))
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = a.Verify(context.Background(), hs256(t, claims(nil)))
	assert.ErrorIs(t, err, auth.ErrUnauthenticated, "HS256 is not accepted with a JWKS")
}

func TestVerify_RefreshesOnUnknownKid(t *testing.T) {
	old := rsaKey(t)
	rotated := rsaKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PrivateKey{"old": old})

	a, err := auth.New(auth.Config{JWKSURL: srv.URL, CacheTTL: time.Hour})
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), rs256(t, "old", old, claims(nil)))
	require.NoError(t, err)

	srv.setKeys(map[string]*rsa.PrivateKey{"old": old, "new": rotated})

	_, err = a.Verify(context.Background(), rs256(t, "new", rotated, claims(nil)))
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())

	_, err = a.Verify(context.Background(), rs256(t, "ghost", rotated, claims(nil)))
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.Equal(t, int32(3), srv.hits.Load(), "one refetch per unknown kid")
}

func TestContext(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "u"})
	id, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", id.UserID)
}
