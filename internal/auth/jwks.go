package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"

	jose "github.com/go-jose/go-jose/v4"
)

// rawKeySet defers per-key decoding so one malformed key does not
// discard the whole set.
type rawKeySet struct {
	Keys []json.RawMessage `json:"keys"`
}

func (k *keySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return fmt.Errorf("build JWKS request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch JWKS: unexpected status %d", resp.StatusCode)
	}

	var set rawKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	loaded := 0
	for _, raw := range set.Keys {
		var jwk jose.JSONWebKey
		if err := jwk.UnmarshalJSON(raw); err != nil {
			k.logger.Warn().Err(err).Msg("Skipping undecodable JWKS key")
			continue
		}
		key, err := signingKey(jwk)
		if err != nil {
			k.logger.Debug().Err(err).Str("kid", jwk.KeyID).Msg("Skipping JWKS key")
			continue
		}
		k.keys.Add(jwk.KeyID, key)
		loaded++
	}

	k.logger.Debug().Int("keys", loaded).Msg("Loaded JWKS")
	return nil
}

// signingKey returns the RSA public key of a JWK usable for RS256 signatures.
func signingKey(jwk jose.JSONWebKey) (*rsa.PublicKey, error) {
	if jwk.KeyID == "" {
		return nil, fmt.Errorf("key has no kid")
	}
	if jwk.Use != "" && jwk.Use != "sig" {
		return nil, fmt.Errorf("key use %q is not sig", jwk.Use)
	}
	pub, ok := jwk.Key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("key type %T is not an RSA public key", jwk.Key)
	}
	if pub.E < 3 {
		return nil, fmt.Errorf("invalid exponent %d", pub.E)
	}
	return pub, nil
}
