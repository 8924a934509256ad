package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAudience matches the audience the hosted auth provider stamps on user tokens.
const DefaultAudience = "authenticated"

var (
	ErrInvalidToken  = errors.New("security: invalid or expired token")
	ErrSecretMissing = errors.New("security: signing secret is required")
)

type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Claims mirrors the auth provider's access token: the user id in sub, the email
// at the top level and profile data under user_metadata.
type Claims struct {
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(c.UserMetadata.Role), "admin")
}

// Verifier validates HS256 access tokens.
type Verifier struct {
	secret   []byte
	audience string
	now      func() time.Time
}

func NewVerifier(secret, audience string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretMissing
	}
	return &Verifier{secret: []byte(secret), audience: strings.TrimSpace(audience)}, nil
}

func (v *Verifier) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.now != nil {
		opts = append(opts, jwt.WithTimeFunc(v.now))
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identity is what the issuer puts into a token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// Issuer mints tokens for local development and tests. Production tokens come
// from the auth provider and share its secret.
type Issuer struct {
	Secret   string
	Audience string
	TTL      time.Duration
	Now      func() time.Time
}

func (i Issuer) Issue(id Identity) (string, error) {
	if strings.TrimSpace(i.Secret) == "" {
		return "", ErrSecretMissing
	}
	if strings.TrimSpace(id.UserID) == "" {
		return "", errors.New("security: user id is required")
	}
	now := time.Now()
	if i.Now != nil {
		now = i.Now()
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	audience := i.Audience
	if audience == "" {
		audience = DefaultAudience
	}
	claims := Claims{
		Email:        id.Email,
		UserMetadata: UserMetadata{FullName: id.Name, Role: id.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.Secret))
}

// ParseUnverified reads claims without checking the signature. It only serves
// client-side display decisions; the backend re-verifies every token.
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
