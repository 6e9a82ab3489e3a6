package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gallery-backend/internal/config"
)

const (
	// Header carrying the identity assertion, set by the access proxy.
	assertionHeader = "Cf-Access-Jwt-Assertion"
	// Cookie fallback when the header is absent.
	assertionCookie = "CF_Authorization"
)

// Verifier validates externally issued identity assertions against the
// issuer's published key set. It is fail-closed: Verify never returns an
// error, every failure mode resolves to a denial.
type Verifier struct {
	teamDomain string
	audience   string
	certsURL   string
	httpClient *http.Client
}

// NewVerifier creates a verifier for the configured issuer
func NewVerifier(cfg config.AccessConfig) *Verifier {
	return &Verifier{
		teamDomain: cfg.TeamDomain,
		audience:   cfg.PolicyAUD,
		certsURL:   cfg.CertsURL(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify reports whether the request carries a valid identity assertion.
// Missing credential, missing issuer configuration, unknown signing key,
// bad signature, audience mismatch and key-set fetch failures all deny.
func (v *Verifier) Verify(r *http.Request) bool {
	token := r.Header.Get(assertionHeader)
	if token == "" {
		if cookie, err := r.Cookie(assertionCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return false
	}

	// Missing configuration must deny, never mean "no restriction".
	if v.teamDomain == "" || v.audience == "" {
		return false
	}

	keys, err := v.fetchKeys(r.Context())
	if err != nil {
		return false
	}

	parsed, err := jwt.Parse(token, keyByID(keys),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.audience),
	)
	return err == nil && parsed.Valid
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (v *Verifier) fetchKeys(ctx context.Context) ([]jsonWebKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set endpoint returned %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Keys, nil
}

// keyByID resolves the token's declared key ID against the fetched key set
func keyByID(keys []jsonWebKey) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		for _, key := range keys {
			if key.Kid == kid {
				return key.publicKey()
			}
		}
		return nil, fmt.Errorf("no key matches kid %q", kid)
	}
}

func (k jsonWebKey) publicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid key modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid key exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
