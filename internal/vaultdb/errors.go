package vaultdb

import "errors"

var (
	// ErrDuplicateTitle is returned by AddEntry when the group already holds
	// an entry with the same title.
	ErrDuplicateTitle = errors.New("entry title already exists in group")

	// ErrWrongPassphrase is returned by Open when the passphrase does not
	// match the stored verifier.
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// ErrNotVault is returned by Open when the file lacks vault metadata.
	ErrNotVault = errors.New("not a vault database")

	ErrClosed = errors.New("store is closed")
)
