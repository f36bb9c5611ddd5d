package credential_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/credential"
)

func TestStore_RoundTrip(t *testing.T) {
	s := credential.NewStore(keyring.NewArrayKeyring(nil))

	_, err := s.Get(credential.KeySession)
	assert.ErrorIs(t, err, credential.ErrNotFound)

	require.NoError(t, s.Set(credential.KeySession, "token"))
	got, err := s.Get(credential.KeySession)
	require.NoError(t, err)
	assert.Equal(t, "token", got)

	require.NoError(t, s.Delete(credential.KeySession))
	require.NoError(t, s.Delete(credential.KeySession))

	_, err = s.Get(credential.KeySession)
	assert.ErrorIs(t, err, credential.ErrNotFound)
}
