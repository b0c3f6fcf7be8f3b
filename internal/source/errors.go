package source

import "errors"

var (
	// ErrBadPassphrase is returned when the export cannot be decrypted with
	// the supplied passphrase.
	ErrBadPassphrase = errors.New("bad passphrase")

	// ErrDecryptionFailed covers every other decryption failure, such as
	// corrupt packets or a failed integrity check.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMalformedSource is returned when the decrypted payload does not hold
	// the expected JSON document.
	ErrMalformedSource = errors.New("malformed source document")
)
