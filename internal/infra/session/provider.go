package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"carrental/internal/infra/security"
)

// ErrNotAuthenticated means no usable access token is available. Callers should
// ask the user to sign in before calling authenticated endpoints.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Provider hands out the current user's bearer token.
type Provider struct {
	source oauth2.TokenSource
}

// New caches tokens from src until they expire.
func New(src oauth2.TokenSource) *Provider {
	if src == nil {
		return &Provider{}
	}
	return &Provider{source: oauth2.ReuseTokenSource(nil, src)}
}

// NewStatic serves a fixed access token, or none when token is blank.
func NewStatic(token string) *Provider {
	token = strings.TrimSpace(token)
	if token == "" {
		return &Provider{}
	}
	return New(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

func (p *Provider) AuthToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p == nil || p.source == nil {
		return "", ErrNotAuthenticated
	}
	tok, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if !tok.Valid() {
		return "", ErrNotAuthenticated
	}
	return tok.AccessToken, nil
}

// IsAdmin reads the role claim of the current token without verifying it. The
// backend remains the authority on admin access.
func (p *Provider) IsAdmin(ctx context.Context) (bool, error) {
	token, err := p.AuthToken(ctx)
	if err != nil {
		return false, err
	}
	claims, err := security.ParseUnverified(token)
	if err != nil {
		return false, err
	}
	return claims.IsAdmin(), nil
}
