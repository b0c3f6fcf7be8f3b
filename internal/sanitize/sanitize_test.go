package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripControlChars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "hello world", want: "hello world"},
		{name: "keeps tab lf cr", in: "a\tb\nc\rd", want: "a\tb\nc\rd"},
		{name: "drops nul and bell", in: "a\x00b\x07c", want: "abc"},
		{name: "drops vt ff", in: "x\x0by\x0cz", want: "xyz"},
		{name: "drops 0e-1f", in: "\x0e\x10\x1bq\x1f", want: "q"},
		{name: "keeps unicode", in: "пароль\x01ü", want: "парольü"},
		{name: "keeps del", in: "a\x7fb", want: "a\x7fb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripControlChars(tt.in))
		})
	}
}

func TestStripControlChars_Idempotent(t *testing.T) {
	var sb strings.Builder
	for r := rune(0); r < 0x80; r++ {
		sb.WriteRune(r)
	}
	inputs := []string{"", "abc", sb.String(), "\x00\x00\t\n", "mixed\x02\x03text\r\n"}

	for _, in := range inputs {
		once := StripControlChars(in)
		assert.Equal(t, once, StripControlChars(once))
	}
}

func TestEscapeFieldText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "secret", want: "secret"},
		{in: `a\b`, want: `a\\b`},
		{in: `say "hi"`, want: `say \"hi\"`},
		{in: "a,b", want: `a\,b`},
		{in: `\"`, want: `\\\"`},
		{in: `\,`, want: `\\\,`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeFieldText(tt.in), "input %q", tt.in)
	}
}

// unescapeFieldText reverses EscapeFieldText and reports whether the input
// contained a delimiter that was not escaped.
func unescapeFieldText(s string) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", false
			}
			i++
			sb.WriteByte(s[i])
		case '"', ',':
			return "", false
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String(), true
}

func TestEscapeFieldText_Unambiguous(t *testing.T) {
	inputs := []string{`p,a"s\s`, `\\\\`, `",,"`, `trailing\`, `plain`, `,`}

	for _, in := range inputs {
		escaped := EscapeFieldText(in)
		got, ok := unescapeFieldText(escaped)
		require.True(t, ok, "escaped %q contains an unescaped delimiter", escaped)
		assert.Equal(t, in, got)
	}
}

func TestEscapeNoteText(t *testing.T) {
	assert.Equal(t, `line1\nline2`, EscapeNoteText("line1\nline2"))
	assert.Equal(t, `a \"quoted\" note`, EscapeNoteText(`a "quoted" note`))
	assert.Equal(t, "", EscapeNoteText(""))
	assert.Equal(t, "keeps,commas\\", EscapeNoteText("keeps,commas\\"))
}

func TestExtractSharedSecret(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "totp uri", in: "otpauth://totp/X?secret=ABC123&issuer=Y", want: "ABC123"},
		{name: "not a uri", in: "not-a-uri", want: "not-a-uri"},
		{name: "bare secret", in: "JBSWY3DPEHPK3PXP", want: "JBSWY3DPEHPK3PXP"},
		{name: "empty", in: "", want: ""},
		{name: "missing secret", in: "otpauth://totp/X?issuer=Y", want: "otpauth://totp/X?issuer=Y"},
		{name: "empty secret", in: "otpauth://totp/X?secret=&issuer=Y", want: "otpauth://totp/X?secret=&issuer=Y"},
		{name: "percent encoded", in: "otpauth://totp/Acme%3Ajohn?secret=AB%3DCD&period=30", want: "AB=CD"},
		{name: "hotp", in: "otpauth://hotp/X?counter=1&secret=XYZ", want: "XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSharedSecret(tt.in))
		})
	}
}
