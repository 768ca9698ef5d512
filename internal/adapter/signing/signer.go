// internal/adapter/signing/signer.go

package signing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptyObjectRef is returned when asked to sign an empty reference
	ErrEmptyObjectRef = errors.New("empty object reference")

	// ErrInvalidToken is returned when a signed URL token does not verify
	ErrInvalidToken = errors.New("invalid signed url token")
)

// Claims identify one object in one bucket
type Claims struct {
	Bucket string `json:"bkt"`
	jwt.RegisteredClaims
}

// Signer issues HS256-signed, time-limited object URLs
type Signer struct {
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewSigner creates a new signer
func NewSigner(baseURL, secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}

	return &Signer{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		now:     time.Now,
	}, nil
}

// Sign returns a URL for objectRef in bucket that is valid for ttl
func (s *Signer) Sign(ctx context.Context, objectRef, bucket string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if objectRef == "" {
		return "", ErrEmptyObjectRef
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Bucket: bucket,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   objectRef,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s?token=%s",
		s.baseURL,
		url.PathEscape(bucket),
		escapeObjectPath(objectRef),
		url.QueryEscape(signed),
	), nil
}

// Verify checks a token issued by Sign and returns its claims
func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func escapeObjectPath(ref string) string {
	parts := strings.Split(strings.TrimLeft(ref, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
