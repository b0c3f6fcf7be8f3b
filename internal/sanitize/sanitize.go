// Package sanitize provides pure text transforms applied to untrusted values
// read from a password-manager export before they are stored: control
// character stripping, escaping for structured fields and notes, and
// extraction of the shared secret from otpauth:// URIs.
package sanitize

import (
	"net/url"
	"strings"
)

// OTPAuthScheme is the URI prefix of one-time-password provisioning URIs.
const OTPAuthScheme = "otpauth://"

var (
	fieldEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `,`, `\,`)
	noteEscaper  = strings.NewReplacer("\n", `\n`, `"`, `\"`)
)

// StripControlChars removes C0 control characters except tab, line feed and
// carriage return. The result is stable under repeated application.
func StripControlChars(s string) string {
	if s == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if isStrippedControl(r) {
			return -1
		}
		return r
	}, s)
}

func isStrippedControl(r rune) bool {
	switch {
	case r <= 0x08:
		return true
	case r == 0x0B, r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F:
		return true
	}
	return false
}

// EscapeFieldText escapes backslashes, double quotes and commas.
//
// The replacement is done in a single left-to-right pass over the input, so a
// backslash inserted for a quote is never escaped a second time.
func EscapeFieldText(s string) string {
	return fieldEscaper.Replace(s)
}

// EscapeNoteText replaces newlines with a literal `\n` and escapes double quotes.
func EscapeNoteText(s string) string {
	return noteEscaper.Replace(s)
}

// ExtractSharedSecret returns the percent-decoded "secret" parameter of an
// otpauth:// URI. Values that are not otpauth URIs, cannot be parsed, or carry
// no secret are returned unchanged.
func ExtractSharedSecret(uri string) string {
	if !strings.HasPrefix(uri, OTPAuthScheme) {
		return uri
	}

	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	q, err := url.ParseQuery(u.RawQuery)
	if err != nil && len(q) == 0 {
		return uri
	}

	secret := q.Get("secret")
	if secret == "" {
		return uri
	}
	return secret
}
