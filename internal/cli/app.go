// Package cli wires configuration, passphrase prompts and the converter into
// the vaultport command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/vaultport/internal/config"
	"github.com/dmitrijs2005/vaultport/internal/converter"
	"github.com/dmitrijs2005/vaultport/internal/logging"
	"github.com/dmitrijs2005/vaultport/internal/shared"
	"github.com/dmitrijs2005/vaultport/internal/source"
	"github.com/dmitrijs2005/vaultport/internal/writer"
)

// sniffSize is how much of the input is inspected to tell plain exports from
// encrypted ones.
const sniffSize = 4096

type App struct {
	config    *config.Config
	log       logging.Logger
	out       io.Writer
	converter *converter.Converter
}

// NewApp builds the logger described by c. Prompts and logs go to out.
func NewApp(c *config.Config, out io.Writer) (*App, error) {
	log, err := logging.New(c.LogLevel, c.LogFormat, out)
	if err != nil {
		return nil, err
	}

	conv := converter.New(log, converter.WithWriterOptions(writer.WithLogger(log)))
	return &App{config: c, log: log, out: out, converter: conv}, nil
}

// Run performs the conversion. Errors are logged before being returned.
func (a *App) Run(ctx context.Context) error {
	opts, err := a.options()
	defer wipe(opts)
	if err != nil {
		a.log.Error(ctx, "reading passphrases failed", "error", err)
		return err
	}

	report, err := a.converter.Run(ctx, opts)
	if err != nil {
		a.reportError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Converted %d entries from %d vaults into %s", report.Entries, report.Vaults, opts.OutputPath)
	if opts.TOTPPath != "" {
		fmt.Fprintf(a.out, " (%d one-time-password entries into %s)", report.TOTPEntries, opts.TOTPPath)
	}
	fmt.Fprintln(a.out)
	if report.Renamed > 0 {
		fmt.Fprintf(a.out, "%d entries were renamed to avoid duplicate titles\n", report.Renamed)
	}
	return nil
}

func (a *App) reportError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, source.ErrBadPassphrase):
		a.log.Error(ctx, "the export passphrase is wrong")
	case errors.Is(err, source.ErrMalformedSource):
		a.log.Error(ctx, "the export does not contain a readable document", "error", err)
	case errors.Is(err, context.Canceled):
		a.log.Warn(ctx, "conversion interrupted")
	default:
		a.log.Error(ctx, "conversion failed", "error", err)
	}
}

// options copies the configured passphrases and prompts for missing ones.
func (a *App) options() (converter.Options, error) {
	c := a.config
	opts := converter.Options{
		InputPath:        c.InputPath,
		OutputPath:       c.OutputPath,
		TOTPPath:         c.TOTPPath,
		DebugDumpPath:    c.DebugDumpPath,
		SourcePassphrase: clone(c.SourcePassphrase),
		OutputPassphrase: clone(c.OutputPassphrase),
		TOTPPassphrase:   clone(c.TOTPPassphrase),
	}

	var err error
	if opts.SourcePassphrase == nil && !isPlainFile(c.InputPath) {
		if opts.SourcePassphrase, err = GetPassword(a.out, "Export passphrase"); err != nil {
			return opts, err
		}
	}
	if opts.OutputPassphrase == nil {
		if opts.OutputPassphrase, err = GetNewPassword(a.out, "New database passphrase"); err != nil {
			return opts, err
		}
	}
	if c.WantsTOTP() && opts.TOTPPassphrase == nil {
		if opts.TOTPPassphrase, err = GetNewPassword(a.out, "New one-time-password database passphrase"); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// isPlainFile reports whether path looks like an unencrypted export. Read
// errors are left for the converter to report.
func isPlainFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, _ := io.ReadFull(f, buf)
	return source.IsPlain(buf[:n])
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func wipe(opts converter.Options) {
	shared.WipeByteArray(opts.SourcePassphrase)
	shared.WipeByteArray(opts.OutputPassphrase)
	shared.WipeByteArray(opts.TOTPPassphrase)
}
