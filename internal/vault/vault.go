// Package vault seals the config file with a password.
//
// Layout: magic | salt | nonce | secretbox(plaintext).
// The key is derived from the password with scrypt.
package vault

import (
	"bytes"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var magic = []byte("FBN1")

var (
	ErrMalformed     = errors.New("vault: malformed envelope")
	ErrWrongPassword = errors.New("vault: wrong password or corrupted data")
)

func headerSize() int {
	return len(magic) + saltSize + nonceSize
}

func deriveKey(password string, salt []byte) (*[keySize]byte, error) {
	raw, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, errors.Wrap(err, "derive key")
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}

// Encrypt seals plaintext under password with a fresh salt and nonce.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("vault: empty password")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "read salt")
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "read nonce")
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, headerSize()+len(plaintext)+secretbox.Overhead)
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

// Decrypt opens an envelope produced by Encrypt.
func Decrypt(data []byte, password string) ([]byte, error) {
	if len(data) < headerSize()+secretbox.Overhead || !bytes.HasPrefix(data, magic) {
		return nil, ErrMalformed
	}

	rest := data[len(magic):]
	salt := rest[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], rest[saltSize:saltSize+nonceSize])
	box := rest[saltSize+nonceSize:]

	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}

	plaintext, ok := secretbox.Open(nil, box, &nonce, key)
	if !ok {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}
