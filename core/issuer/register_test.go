package issuer_test

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certflow/core/account"
	"github.com/dmitrymomot/certflow/core/ca"
	"github.com/dmitrymomot/certflow/core/config"
	"github.com/dmitrymomot/certflow/core/issuer"
)

type stubRegClient struct {
	tosURL      string
	err         error
	ignoreTerms bool

	calls      int
	sawPrompt  bool
	gotContact []string
}

func (c *stubRegClient) Register(_ context.Context, contact []string, prompt func(tosURL string) bool) (*ca.Registration, error) {
	c.calls++
	c.sawPrompt = prompt != nil
	c.gotContact = contact
	if c.err != nil {
		return nil, c.err
	}
	if c.tosURL != "" && prompt != nil {
		if !prompt(c.tosURL) && !c.ignoreTerms {
			return nil, errors.New("acme: must agree to terms of service")
		}
	}
	return &ca.Registration{
		URI:            "https://acme.test/acct/1",
		Status:         "valid",
		Contact:        contact,
		TermsOfService: c.tosURL,
	}, nil
}

func regConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:     "https://acme.test/directory",
		Email:      "admin@example.com",
		ConfigDir:  t.TempDir(),
		WorkDir:    t.TempDir(),
		RSAKeySize: 2048,
	}
}

func factoryFor(client issuer.RegistrationClient) issuer.ClientFactory {
	return func(crypto.Signer) (issuer.RegistrationClient, error) {
		return client, nil
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	factory := factoryFor(&stubRegClient{})

	_, err := issuer.Register(context.Background(), nil, store, factory, nil)
	require.ErrorIs(t, err, issuer.ErrNilConfig)

	_, err = issuer.Register(context.Background(), regConfig(t), nil, factory, nil)
	require.ErrorIs(t, err, issuer.ErrNilStore)

	_, err = issuer.Register(context.Background(), regConfig(t), store, nil, nil)
	require.ErrorIs(t, err, issuer.ErrNilClientFactory)
}

func TestRegisterDeclinedPersistsNothing(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	client := &stubRegClient{tosURL: "https://acme.test/terms"}

	var promptedWith string
	decline := func(tosURL string) bool {
		promptedWith = tosURL
		return false
	}

	_, err := issuer.Register(context.Background(), regConfig(t), store, factoryFor(client), decline)
	require.ErrorIs(t, err, issuer.ErrTermsDeclined)
	assert.Equal(t, "https://acme.test/terms", promptedWith)
	assert.Zero(t, store.SaveCount())
}

func TestRegisterDeclinedEvenWhenAuthorityAccepts(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	client := &stubRegClient{tosURL: "https://acme.test/terms", ignoreTerms: true}

	_, err := issuer.Register(context.Background(), regConfig(t), store, factoryFor(client),
		func(string) bool { return false })
	require.ErrorIs(t, err, issuer.ErrTermsDeclined)
	assert.Zero(t, store.SaveCount())
}

func TestRegisterAcceptedPersistsExactlyOnce(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	client := &stubRegClient{tosURL: "https://acme.test/terms"}

	acct, err := issuer.Register(context.Background(), regConfig(t), store, factoryFor(client),
		func(string) bool { return true })
	require.NoError(t, err)
	require.NotNil(t, acct.Registration)
	assert.Equal(t, "https://acme.test/acct/1", acct.Registration.URI)
	assert.Equal(t, []string{"mailto:admin@example.com"}, client.gotContact)
	assert.Equal(t, 1, store.SaveCount())

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acct.ID(), stored.ID())
}

func TestRegisterWithoutCallbackAutoAccepts(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	client := &stubRegClient{tosURL: "https://acme.test/terms"}

	_, err := issuer.Register(context.Background(), regConfig(t), store, factoryFor(client), nil)
	require.NoError(t, err)

	// No local prompt is installed; acceptance is delegated to the protocol
	// layer.
	assert.False(t, client.sawPrompt)
	assert.Equal(t, 1, store.SaveCount())
}

func TestRegisterReusesStoredAccount(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	existing := &account.Account{
		Key:          key,
		Registration: &ca.Registration{URI: "https://acme.test/acct/7", Status: "valid"},
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Save(context.Background(), existing))

	client := &stubRegClient{}
	acct, err := issuer.Register(context.Background(), regConfig(t), store, factoryFor(client), nil)
	require.NoError(t, err)
	assert.Equal(t, existing.ID(), acct.ID())
	assert.Zero(t, client.calls)
	assert.Equal(t, 1, store.SaveCount())
}

func TestRegisterClientErrorIsNotDecline(t *testing.T) {
	t.Parallel()

	store := account.NewMemoryStore()
	client := &stubRegClient{err: errors.New("directory unreachable")}

	_, err := issuer.Register(context.Background(), regConfig(t), store, factoryFor(client), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, issuer.ErrTermsDeclined)
	assert.Zero(t, store.SaveCount())
}
