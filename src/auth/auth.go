package auth

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/TTRSQ/gdax/interface/exchange"
	jwt "github.com/dgrijalva/jwt-go"
)

// ErrInvalidSecret is returned when the API secret is not base64.
var ErrInvalidSecret = errors.New("APISecKey must be base64 encoded")

// Header names of the passphrase scheme.
const (
	HeaderKey        = "CB-ACCESS-KEY"
	HeaderSign       = "CB-ACCESS-SIGN"
	HeaderTimestamp  = "CB-ACCESS-TIMESTAMP"
	HeaderPassphrase = "CB-ACCESS-PASSPHRASE"
)

// Signer produces the auth headers of one request. requestPath includes
// the query string.
type Signer interface {
	Headers(method, requestPath string, body []byte) (map[string]string, error)
}

// HMACSigner signs with the key/secret/passphrase scheme.
type HMACSigner struct {
	key        string
	secret     []byte
	passphrase string
	now        func() time.Time
}

// NewHMACSigner decodes the secret once.
func NewHMACSigner(key exchange.Key) (*HMACSigner, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	secret, err := base64.StdEncoding.DecodeString(key.APISecKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &HMACSigner{
		key:        key.APIKey,
		secret:     secret,
		passphrase: key.Passphrase,
		now:        time.Now,
	}, nil
}

// SetClock replaces the timestamp source.
func (s *HMACSigner) SetClock(now func() time.Time) {
	s.now = now
}

// Timestamp returns the current CB-ACCESS-TIMESTAMP value.
func (s *HMACSigner) Timestamp() string {
	return strconv.FormatInt(s.now().Unix(), 10)
}

// Sign returns base64(HMAC-SHA256(secret, timestamp+method+path+body)).
func (s *HMACSigner) Sign(timestamp, method, requestPath string, body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(timestamp + method + requestPath))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Key returns the API key.
func (s *HMACSigner) Key() string { return s.key }

// Passphrase returns the API passphrase.
func (s *HMACSigner) Passphrase() string { return s.passphrase }

// Headers implements Signer.
func (s *HMACSigner) Headers(method, requestPath string, body []byte) (map[string]string, error) {
	timestamp := s.Timestamp()
	return map[string]string{
		HeaderKey:        s.key,
		HeaderSign:       s.Sign(timestamp, method, requestPath, body),
		HeaderTimestamp:  timestamp,
		HeaderPassphrase: s.passphrase,
	}, nil
}

// JWTSigner signs every request with a short lived ES256 bearer token, the
// scheme of CDP API keys.
type JWTSigner struct {
	keyName string
	key     *ecdsa.PrivateKey
	host    string
	ttl     time.Duration
	now     func() time.Time
}

// NewJWTSigner parses an EC private key in PEM form. apiURI is the REST
// endpoint the tokens are bound to.
func NewJWTSigner(keyName string, privateKeyPEM []byte, apiURI string) (*JWTSigner, error) {
	if keyName == "" {
		return nil, errors.New("jwt signer: key name required")
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("jwt signer: parse private key: %w", err)
	}
	u, err := url.Parse(apiURI)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("jwt signer: bad api uri %q", apiURI)
	}
	return &JWTSigner{
		keyName: keyName,
		key:     key,
		host:    u.Host,
		ttl:     2 * time.Minute,
		now:     time.Now,
	}, nil
}

// SetClock replaces the time source of nbf/exp.
func (s *JWTSigner) SetClock(now func() time.Time) {
	s.now = now
}

// Token builds the bearer token of one request.
func (s *JWTSigner) Token(method, requestPath string) (string, error) {
	path := requestPath
	if u, err := url.Parse(requestPath); err == nil {
		path = u.Path
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub": s.keyName,
		"iss": "cdp",
		"nbf": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"uri": method + " " + s.host + path,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = s.keyName
	nonce, err := newNonce()
	if err != nil {
		return "", err
	}
	token.Header["nonce"] = nonce

	return token.SignedString(s.key)
}

// Headers implements Signer.
func (s *JWTSigner) Headers(method, requestPath string, body []byte) (map[string]string, error) {
	token, err := s.Token(method, requestPath)
	if err != nil {
		return nil, fmt.Errorf("jwt signer: %w", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
