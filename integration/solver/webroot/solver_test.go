package webroot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/integration/solver/webroot"
)

func httpChallenge(token string) ca.Challenge {
	return ca.Challenge{
		Type:  ca.ChallengeTypeHTTP01,
		URI:   "https://acme.test/chall/" + token,
		Token: token,
	}
}

func tokenPath(root, token string) string {
	return filepath.Join(root, ".well-known", "acme-challenge", token)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("empty root", func(t *testing.T) {
		t.Parallel()

		_, err := webroot.New("   ")
		require.ErrorIs(t, err, webroot.ErrEmptyRoot)
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		_, err := webroot.New(filepath.Join(t.TempDir(), "nope"))
		require.ErrorIs(t, err, webroot.ErrMissingRoot)
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

		_, err := webroot.New(path)
		require.ErrorIs(t, err, webroot.ErrNotDirectory)
	})
}

func TestSupports(t *testing.T) {
	t.Parallel()

	solver, err := webroot.New(t.TempDir())
	require.NoError(t, err)

	assert.True(t, solver.Supports(ca.Challenge{Type: ca.ChallengeTypeHTTP01}))
	assert.False(t, solver.Supports(ca.Challenge{Type: ca.ChallengeTypeDNS01}))
	assert.False(t, solver.Supports(ca.Challenge{Type: ca.ChallengeTypeTLSALPN01}))
}

func TestPresentWritesTokenPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	solver, err := webroot.New(root)
	require.NoError(t, err)

	ch := httpChallenge("evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ")
	require.NoError(t, solver.Present(context.Background(), "example.com", ch, ch.Token+".thumbprint"))

	data, err := os.ReadFile(tokenPath(root, ch.Token))
	require.NoError(t, err)
	assert.Equal(t, ch.Token+".thumbprint", string(data))
}

func TestPresentOverwritesPreviousResponse(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	solver, err := webroot.New(root)
	require.NoError(t, err)

	ch := httpChallenge("token-1")
	ctx := context.Background()
	require.NoError(t, solver.Present(ctx, "example.com", ch, "stale"))
	require.NoError(t, solver.Present(ctx, "example.com", ch, "fresh"))

	data, err := os.ReadFile(tokenPath(root, ch.Token))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}

func TestPresentRejectsOtherChallengeTypes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	solver, err := webroot.New(root)
	require.NoError(t, err)

	ch := ca.Challenge{Type: ca.ChallengeTypeDNS01, Token: "token-1"}
	err = solver.Present(context.Background(), "example.com", ch, "auth")
	require.ErrorIs(t, err, webroot.ErrUnsupportedChallenge)
	assert.NoFileExists(t, tokenPath(root, ch.Token))
}

func TestPresentRejectsUnsafeTokens(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	solver, err := webroot.New(root)
	require.NoError(t, err)

	for _, token := range []string{"", "..", "../evil", "a/b", ".hidden"} {
		err := solver.Present(context.Background(), "example.com", httpChallenge(token), "auth")
		require.ErrorIs(t, err, webroot.ErrInvalidToken, "token %q", token)
	}
}

func TestPresentCanceledContext(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	solver, err := webroot.New(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := httpChallenge("token-1")
	err = solver.Present(ctx, "example.com", ch, "auth")
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, tokenPath(root, ch.Token))
}

func TestCleanUpRemovesToken(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	solver, err := webroot.New(root)
	require.NoError(t, err)

	ch := httpChallenge("token-1")
	ctx := context.Background()
	require.NoError(t, solver.Present(ctx, "example.com", ch, "auth"))
	require.NoError(t, solver.CleanUp(ctx, "example.com", ch, "auth"))

	assert.NoFileExists(t, tokenPath(root, ch.Token))
	assert.DirExists(t, filepath.Join(root, ".well-known", "acme-challenge"))
}

func TestCleanUpMissingTokenSucceeds(t *testing.T) {
	t.Parallel()

	solver, err := webroot.New(t.TempDir())
	require.NoError(t, err)

	ch := httpChallenge("never-presented")
	require.NoError(t, solver.CleanUp(context.Background(), "example.com", ch, "auth"))
}
