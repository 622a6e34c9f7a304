package fetch

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Authorization decorates outgoing origin requests with credentials.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a failed Apply aborts the fetch before any network I/O.
type Authorization interface {
	// Apply adds credentials to req.
	Apply(req *http.Request) error
}

// BasicAuthorization sends a username and password with every request.
type BasicAuthorization struct {
	Username string
	Password string
}

// Apply sets the Authorization header to HTTP basic credentials.
func (a BasicAuthorization) Apply(req *http.Request) error {
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// BearerAuthorization sends a fixed bearer token with every request.
type BearerAuthorization struct {
	Token string
}

// Apply sets the Authorization header to the bearer token.
func (a BearerAuthorization) Apply(req *http.Request) error {
	if a.Token == "" {
		return errors.New("fetch: empty bearer token")
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// SignedAuthorization mints a short-lived HS256 token per request, for
// origins that verify signed access to protected images. The request
// URL is carried in the subject claim so the origin can bind the token
// to the resource.
type SignedAuthorization struct {
	// SigningKey is the shared HMAC secret.
	SigningKey []byte

	// Issuer is placed in the iss claim.
	Issuer string

	// TTL bounds token validity. Default: 1 minute.
	TTL time.Duration
}

// Apply signs a fresh token and sets it as a bearer credential.
func (a SignedAuthorization) Apply(req *http.Request) error {
	if len(a.SigningKey) == 0 {
		return errors.New("fetch: empty signing key")
	}

	ttl := a.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.Issuer,
		Subject:   req.URL.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.SigningKey)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

var (
	_ Authorization = BasicAuthorization{}
	_ Authorization = BearerAuthorization{}
	_ Authorization = SignedAuthorization{}
)
