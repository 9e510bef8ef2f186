package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// tokenHeader is fixed; the codec signs exactly one kind of token. The
// signature is always recomputed over the raw segments, never over
// re-serialized JSON.
const tokenHeader = `{"alg":"HS256","typ":"session"}`

// Claims is the session token payload.
type Claims struct {
	Subject   string `json:"sub"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Codec signs and verifies compact session tokens of the form
// base64url(header).base64url(payload).base64url(signature).
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec builds a token codec. An empty secret is a configuration error,
// never a silently unsigned token.
func NewCodec(secret string) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// Sign serializes the claims with fresh iat/exp and signs the token.
func (c *Codec) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := c.now().Unix()
	claims.IssuedAt = now
	claims.ExpiresAt = now + int64(ttl/time.Second)

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	headerSegment := base64.RawURLEncoding.EncodeToString([]byte(tokenHeader))
	payloadSegment := base64.RawURLEncoding.EncodeToString(payload)
	signingString := headerSegment + "." + payloadSegment
	signature := c.sign(signingString)
	return signingString + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// Verify checks structure, signature and expiry, in that order. Every failure
// mode collapses to ok=false; malformed and expired tokens are
// indistinguishable to the caller.
func (c *Codec) Verify(token string) (Claims, bool) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return Claims{}, false
	}
	signature, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		return Claims{}, false
	}
	expected := c.sign(segments[0] + "." + segments[1])
	if subtle.ConstantTimeCompare(signature, expected) != 1 {
		return Claims{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return Claims{}, false
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, false
	}
	if claims.ExpiresAt != 0 && claims.ExpiresAt < c.now().Unix() {
		return Claims{}, false
	}
	return claims, true
}

func (c *Codec) sign(data string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
