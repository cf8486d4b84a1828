// Package auth verifies bearer tokens issued by the identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultCacheSize is the number of signing keys kept in memory.
	DefaultCacheSize = 16

	// DefaultCacheTTL is how long a fetched signing key is trusted.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultRequestsPerMinute caps JWKS refetches triggered by unknown key IDs.
	DefaultRequestsPerMinute = 5
)

var (
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnknownKey is returned when no signing key matches the token's kid.
	ErrUnknownKey = errors.New("unknown signing key")
)

// Claims are the verified claims of an access token.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// Options configure a Verifier.
type Options struct {
	Audience string
	Issuer   string

	// JWKSURL is used for RS256 tokens when HMACSecret is empty.
	JWKSURL string

	// HMACSecret switches verification to HS256 with a shared secret.
	HMACSecret string

	CacheSize         int
	CacheTTL          time.Duration
	RequestsPerMinute int
	HTTPClient        *http.Client
	Logger            zerolog.Logger
}

// Verifier validates access tokens.
type Verifier struct {
	audience   string
	issuer     string
	hmacSecret []byte
	jwks       *keySet
	logger     zerolog.Logger
}

// NewVerifier creates a new token verifier.
func NewVerifier(opts Options) (*Verifier, error) {
	v := &Verifier{
		audience: opts.Audience,
		issuer:   opts.Issuer,
		logger:   opts.Logger.With().Str("component", "auth").Logger(),
	}

	if opts.HMACSecret != "" {
		v.hmacSecret = []byte(opts.HMACSecret)
		return v, nil
	}

	if opts.JWKSURL == "" {
		return nil, fmt.Errorf("either a JWKS URL or an HMAC secret is required")
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	v.jwks = &keySet{
		url:     opts.JWKSURL,
		client:  opts.HTTPClient,
		keys:    expirable.NewLRU[string, any](opts.CacheSize, nil, opts.CacheTTL),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute),
		logger:  v.logger,
	}

	return v, nil
}

// Verify parses and validates a token and returns its claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.hmacSecret != nil {
		parserOpts = append(parserOpts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	} else {
		parserOpts = append(parserOpts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if v.hmacSecret != nil {
			return v.hmacSecret, nil
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: token has no kid", ErrUnknownKey)
		}
		return v.jwks.lookup(ctx, kid)
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, ErrUnknownKey) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrUnknownKey)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// keySet resolves signing keys by kid from a JWKS endpoint.
type keySet struct {
	url     string
	client  *http.Client
	keys    *expirable.LRU[string, any]
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu sync.Mutex // serializes fetches
}

func (k *keySet) lookup(ctx context.Context, kid string) (any, error) {
	if key, ok := k.keys.Get(kid); ok {
		return key, nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	// Another caller may have fetched while we waited
	if key, ok := k.keys.Get(kid); ok {
		return key, nil
	}

	if !k.limiter.Allow() {
		k.logger.Warn().Str("kid", kid).Msg("JWKS refresh rate limited")
		return nil, ErrUnknownKey
	}

	if err := k.refresh(ctx); err != nil {
		k.logger.Error().Err(err).Str("url", k.url).Msg("Failed to refresh JWKS")
		return nil, fmt.Errorf("%w: %v", ErrUnknownKey, err)
	}

	key, ok := k.keys.Get(kid)
	if !ok {
		return nil, ErrUnknownKey
	}
	return key, nil
}
