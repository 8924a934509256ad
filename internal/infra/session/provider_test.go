package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"carrental/internal/infra/security"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("refresh failed")
}

func TestAuthToken(t *testing.T) {
	ctx := context.Background()

	_, err := NewStatic("  ").AuthToken(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	var nilProvider *Provider
	_, err = nilProvider.AuthToken(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = New(failingSource{}).AuthToken(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	expired := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)})
	_, err = New(expired).AuthToken(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	token, err := NewStatic("abc").AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestIsAdmin(t *testing.T) {
	ctx := context.Background()
	issuer := security.Issuer{Secret: "s"}

	adminToken, err := issuer.Issue(security.Identity{UserID: "u-1", Role: "admin"})
	require.NoError(t, err)
	userToken, err := issuer.Issue(security.Identity{UserID: "u-2"})
	require.NoError(t, err)

	isAdmin, err := NewStatic(adminToken).IsAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = NewStatic(userToken).IsAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	_, err = NewStatic("").IsAdmin(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
