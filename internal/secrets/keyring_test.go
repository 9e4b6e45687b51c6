package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringTokens(t *testing.T) {
	keyring.MockInit()
	s := Keyring{}
	ctx := context.Background()

	_, err := KeyringTokens{Store: s, Email: "me@example.com"}.Token(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	require.NoError(t, SetToken(s, "Me@Example.com ", "tok-123"))
	tok, err := KeyringTokens{Store: s, Email: "me@example.com"}.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)

	_, err = KeyringTokens{Store: s}.Token(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestPasswordAndSignOut(t *testing.T) {
	keyring.MockInit()
	s := Keyring{}

	assert.Error(t, SetPassword(s, "", "pw"))
	assert.Error(t, SetPassword(s, "me@example.com", "  "))
	require.NoError(t, SetPassword(s, "me@example.com", "hunter2"))
	require.NoError(t, SetToken(s, "me@example.com", "tok"))

	pw, err := GetPassword(s, "me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	require.NoError(t, SignOut(s, "me@example.com"))
	_, err = GetPassword(s, "me@example.com")
	assert.Error(t, err)
	require.NoError(t, SignOut(s, "me@example.com"))
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = StaticToken("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
