package aes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key := DeriveKey("test-secret")
	plaintext := []byte(`{"cookie":"zpw_sek=abc123"}`)

	encoded, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.NotContains(t, encoded, "zpw_sek", "密文不应泄露明文")

	decrypted, err := Decrypt(encoded, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

// 每次加密使用新的随机 Nonce，同一明文产出不同密文
func TestEncryptNonceRandomness(t *testing.T) {
	key := DeriveKey("test-secret")
	a, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWrongKey(t *testing.T) {
	encoded, err := Encrypt([]byte("secret data"), DeriveKey("key-one"))
	require.NoError(t, err)

	_, err = Decrypt(encoded, DeriveKey("key-two"))
	assert.Error(t, err, "GCM 认证应拒绝错误密钥")
}

func TestDecryptMalformedInput(t *testing.T) {
	key := DeriveKey("test-secret")

	_, err := Decrypt("not base64!!!", key)
	assert.Error(t, err)

	// 合法 base64 但长度不足一个 Nonce
	_, err = Decrypt("YWJj", key)
	assert.Error(t, err)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	assert.Equal(t, DeriveKey("secret"), DeriveKey("secret"))
	assert.NotEqual(t, DeriveKey("secret"), DeriveKey("other"))
	assert.Len(t, DeriveKey("secret"), 32)
}
