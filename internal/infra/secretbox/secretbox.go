package secretbox

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Prefix marks a sealed value.
const Prefix = "enc:v1:"

const (
	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// SaltLength is the salt length used in key derivation.
	SaltLength = 16

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = chacha20poly1305.KeySize
)

// Errors.
var (
	ErrPassphraseTooWeak = errors.New("secretbox: passphrase too weak (minimum 8 characters)")
	ErrWrongPassphrase   = errors.New("secretbox: wrong passphrase or corrupted value")
	ErrMalformed         = errors.New("secretbox: malformed sealed value")
	ErrNotSealed         = errors.New("secretbox: value is not sealed")
)

// IsSealed reports whether s carries the sealed-value prefix.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// Seal encrypts plaintext under passphrase.
func Seal(plaintext string, passphrase []byte) (string, error) {
	if len(passphrase) < MinPassphraseLength {
		return "", ErrPassphraseTooWeak
	}

	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("secretbox: generate salt: %w", err)
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secretbox: generate nonce: %w", err)
	}

	out := make([]byte, 0, SaltLength+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(plaintext), []byte(Prefix))
	return Prefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func Open(sealed string, passphrase []byte) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrNotSealed
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, Prefix))
	if err != nil {
		return "", ErrMalformed
	}
	if len(raw) < SaltLength+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return "", ErrMalformed
	}

	salt := raw[:SaltLength]
	nonce := raw[SaltLength : SaltLength+chacha20poly1305.NonceSizeX]
	ciphertext := raw[SaltLength+chacha20poly1305.NonceSizeX:]

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(Prefix))
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(plaintext), nil
}

// Reveal returns s unchanged when it is not sealed and opens it otherwise.
func Reveal(s string, passphrase []byte) (string, error) {
	if !IsSealed(s) {
		return s, nil
	}
	return Open(s, passphrase)
}

func newAEAD(passphrase, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	defer zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: init cipher: %w", err)
	}
	return aead, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
