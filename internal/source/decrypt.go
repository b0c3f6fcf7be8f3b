package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	pgperrors "github.com/ProtonMail/go-crypto/openpgp/errors"
)

var armorHeader = []byte("-----BEGIN PGP")

// Decrypt opens a passphrase-protected OpenPGP message, binary or
// ASCII-armored, and returns its literal data.
//
// A wrong passphrase yields ErrBadPassphrase; everything else that prevents
// reading the plaintext yields ErrDecryptionFailed.
func Decrypt(data, passphrase []byte) ([]byte, error) {
	var r io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(bytes.TrimSpace(data), armorHeader) {
		block, err := armor.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
		}
		r = block.Body
	}

	// ReadMessage keeps prompting until a key works; the second call means
	// the passphrase was rejected.
	prompted := false
	prompt := func(keys []openpgp.Key, symmetric bool) ([]byte, error) {
		if !symmetric || prompted {
			return nil, ErrBadPassphrase
		}
		prompted = true
		return passphrase, nil
	}

	md, err := openpgp.ReadMessage(r, openpgp.EntityList{}, prompt, nil)
	if err != nil {
		if errors.Is(err, ErrBadPassphrase) || errors.Is(err, pgperrors.ErrKeyIncorrect) {
			return nil, ErrBadPassphrase
		}
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
