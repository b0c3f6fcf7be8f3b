package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/vaultport/internal/shared"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

var (
	ErrEmptyPassphrase    = errors.New("passphrase must not be empty")
	ErrPassphraseMismatch = errors.New("passphrases do not match")
)

// GetPassword prints prompt to w and reads a passphrase from the terminal
// without echo. A newline is printed after the read to keep the UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetNewPassword asks for a passphrase twice and returns it when both
// readings match and are not empty.
func GetNewPassword(w io.Writer, prompt string) ([]byte, error) {
	first, err := GetPassword(w, prompt)
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, ErrEmptyPassphrase
	}

	second, err := GetPassword(w, "Repeat "+prompt)
	defer shared.WipeByteArray(second)
	if err != nil {
		shared.WipeByteArray(first)
		return nil, err
	}
	if !bytes.Equal(first, second) {
		shared.WipeByteArray(first)
		return nil, ErrPassphraseMismatch
	}
	return first, nil
}
