// Package cipher encrypts short text fields with AES-CBC. Every call draws a
// fresh IV, which is stored in front of the ciphertext before base64 encoding.
package cipher

import (
	"bytes"
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidKey          = errors.New("cipher: key must decode to 16, 24 or 32 bytes")
	ErrMalformedCiphertext = errors.New("cipher: malformed ciphertext")
	ErrDecryption          = errors.New("cipher: decryption failed")
)

// Cipher is safe for concurrent use; it only holds the immutable block.
type Cipher struct {
	block gocipher.Block
}

// New builds a Cipher from a standard base64 encoded AES key.
func New(base64Key string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return NewFromKey(key)
}

func NewFromKey(key []byte) (*Cipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Cipher{block: block}, nil
}

// Encrypt returns nil for a nil input.
func (c *Cipher) Encrypt(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}

	padded := pad([]byte(*plaintext), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))

	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("cipher: failed to generate iv: %w", err)
	}

	gocipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	encoded := base64.StdEncoding.EncodeToString(out)
	return &encoded, nil
}

// Decrypt returns nil for a nil input.
func (c *Cipher) Decrypt(blob *string) (*string, error) {
	if blob == nil {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(*blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(raw) < 2*aes.BlockSize || len(raw)%aes.BlockSize != 0 {
		return nil, ErrMalformedCiphertext
	}

	iv, body := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plain := make([]byte, len(body))
	gocipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, body)

	plain, err = unpad(plain, aes.BlockSize)
	if err != nil {
		return nil, err
	}

	decoded := string(plain)
	return &decoded, nil
}

// EncryptString is Encrypt for callers that never pass nil.
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	out, err := c.Encrypt(&plaintext)
	if err != nil {
		return "", err
	}
	return *out, nil
}

func (c *Cipher) DecryptString(blob string) (string, error) {
	out, err := c.Decrypt(&blob)
	if err != nil {
		return "", err
	}
	return *out, nil
}

// pad applies PKCS#7.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrDecryption
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrDecryption
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrDecryption
		}
	}
	return data[:len(data)-n], nil
}
