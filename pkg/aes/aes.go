// Package aes 提供凭证数据落盘前的对称加密
// 使用 AES-GCM 模式，密钥由配置中的 secret 经 PBKDF2 派生
package aes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// 固定盐值，凭证加密只需防止明文落盘，不做多租户隔离
var kdfSalt = []byte("zalo_connector.credential")

// DeriveKey 从配置的 secret 派生 32 字节 AES-256 密钥
func DeriveKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), kdfSalt, 4096, 32, sha256.New)
}

// Encrypt 加密数据并返回 base64 字符串
// GCM 的随机 Nonce 附加在密文头部
func Encrypt(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	// 每次加密都生成一个新的随机 Nonce
	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := aesGCM.Seal(nonce, nonce, data, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt 解密 Encrypt 产出的 base64 字符串
func Decrypt(encoded string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(raw) < aesGCM.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := raw[:aesGCM.NonceSize()], raw[aesGCM.NonceSize():]
	return aesGCM.Open(nil, nonce, ciphertext, nil)
}
