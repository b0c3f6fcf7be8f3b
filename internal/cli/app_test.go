package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vaultport/internal/config"
	"github.com/dmitrijs2005/vaultport/internal/source"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb"
)

const export = `{"vaults": {"v1": {"name": "Personal", "items": [
  {"data": {"metadata": {"name": "Bank"}, "content": {"password": "p", "totpUri": "otpauth://totp/x?secret=ABC"}}},
  {"data": {"metadata": {"name": "Mail"}, "content": {"password": "q"}}}
]}}}`

func encryptedInput(t *testing.T, passphrase string) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := openpgp.SymmetricallyEncrypt(&buf, []byte(passphrase), nil, nil)
	require.NoError(t, err)
	_, err = w.Write([]byte(export))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "export.pgp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func newConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	c := &config.Config{InputPath: input, OutputPath: filepath.Join(t.TempDir(), "out.vdb")}
	c.LoadDefaults()
	require.NoError(t, c.Validate())
	return c
}

func TestNewApp_BadLogFormat(t *testing.T) {
	c := &config.Config{LogLevel: "info", LogFormat: "xml"}
	_, err := NewApp(c, &bytes.Buffer{})
	require.Error(t, err)
}

func TestApp_Run_PromptsForPassphrases(t *testing.T) {
	calls := stubPasswords(t, "src", "dst", "dst", "otp", "otp")

	c := newConfig(t, encryptedInput(t, "src"))
	c.TOTPPath = filepath.Join(t.TempDir(), "totp.vdb")

	var out bytes.Buffer
	app, err := NewApp(c, &out)
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 5, *calls)

	assert.Contains(t, out.String(), "Converted 2 entries from 1 vaults")
	assert.Contains(t, out.String(), "1 one-time-password entries")

	s, err := vaultdb.Open(context.Background(), c.OutputPath, []byte("dst"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = vaultdb.Open(context.Background(), c.TOTPPath, []byte("otp"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestApp_Run_ConfiguredPassphrasesSkipPrompts(t *testing.T) {
	calls := stubPasswords(t)

	c := newConfig(t, encryptedInput(t, "src"))
	c.SourcePassphrase = []byte("src")
	c.OutputPassphrase = []byte("dst")

	app, err := NewApp(c, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))
	assert.Zero(t, *calls)
	assert.Equal(t, []byte("src"), c.SourcePassphrase, "configured passphrase is not wiped")
}

func TestApp_Run_PlainInputNeedsNoExportPassphrase(t *testing.T) {
	calls := stubPasswords(t, "dst", "dst")

	input := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(input, []byte(export), 0o600))

	app, err := NewApp(newConfig(t, input), &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 2, *calls)
}

func TestApp_Run_WrongExportPassphrase(t *testing.T) {
	stubPasswords(t, "nope", "dst", "dst")

	var out bytes.Buffer
	app, err := NewApp(newConfig(t, encryptedInput(t, "src")), &out)
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.ErrorIs(t, err, source.ErrBadPassphrase)
	assert.Contains(t, out.String(), "the export passphrase is wrong")
}

func TestApp_Run_PassphraseMismatch(t *testing.T) {
	stubPasswords(t, "src", "a", "b")

	var out bytes.Buffer
	app, err := NewApp(newConfig(t, encryptedInput(t, "src")), &out)
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.ErrorIs(t, err, ErrPassphraseMismatch)
	assert.Contains(t, out.String(), "reading passphrases failed")
}
