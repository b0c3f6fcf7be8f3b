// Package cryptox holds the primitives protecting a vault database: an
// argon2id key derivation, a key verifier, a keyed title digest and AES-GCM
// sealing of JSON payloads.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys returned by DeriveMasterKey.
const KeySize = 32

// MakeVerifier returns a digest of the master key that can be stored to check
// a passphrase later without storing the key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches a passphrase into a KeySize-byte key with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// TitleMAC returns HMAC-SHA256(key, title). Equal titles under the same key
// produce equal digests, which lets the store index titles it cannot read.
func TitleMAC(key []byte, title string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(title))
	return mac.Sum(nil)
}

// EncryptEntry serializes entry to JSON and seals it with AES-GCM under key.
// A fresh 12-byte nonce is generated for every call and returned alongside
// the ciphertext.
//
//	ciphertext, nonce, err := EncryptEntry(payload, key)
func EncryptEntry(entry any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// DecryptEntry opens ciphertext produced by EncryptEntry and unmarshals the
// JSON payload into v.
func DecryptEntry(ciphertext, nonce, key []byte, v any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}
