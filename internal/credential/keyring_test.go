package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
)

func TestVaultSetGetDelete(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))

	require.NoError(t, v.Set(KeyEmailPassword, "hunter2"))
	got, err := v.Get(KeyEmailPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, v.Delete(KeyEmailPassword))
	_, err = v.Get(KeyEmailPassword)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestVaultRejectsUnknownKey(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))
	assert.Error(t, v.Set("aws-secret", "x"))
}

func TestVaultFillOnlyEmptySecrets(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring([]keyring.Item{
		{Key: KeyEmailPassword, Data: []byte("from-keyring")},
		{Key: KeyTwilioAuthToken, Data: []byte("token-from-keyring")},
	}))

	cfg := model.NotifyConfig{}
	cfg.Email.Password = "from-env"

	filled, err := v.Fill(&cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyTwilioAuthToken}, filled)
	assert.Equal(t, "from-env", cfg.Email.Password)
	assert.Equal(t, "token-from-keyring", cfg.Voice.AuthToken)
}

func TestVaultFillToleratesMissingKeys(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))

	cfg := model.NotifyConfig{}
	filled, err := v.Fill(&cfg)
	require.NoError(t, err)
	assert.Empty(t, filled)
	assert.Empty(t, cfg.Email.Password)
}
