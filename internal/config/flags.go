package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/vaultport/internal/flagx"
)

// parseFlags overlays cfg with the conversion flags found in args. Unknown
// flags are filtered out first so -c/-config does not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-i", "-o", "-t", "-l", "-f", "-d"})

	fs := flag.NewFlagSet("vaultport", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.InputPath, "i", cfg.InputPath, "path of the export to convert")
	fs.StringVar(&cfg.OutputPath, "o", cfg.OutputPath, "path of the password database to create")
	fs.StringVar(&cfg.TOTPPath, "t", cfg.TOTPPath, "path of the one-time-password database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: text, json, console")
	fs.StringVar(&cfg.DebugDumpPath, "d", cfg.DebugDumpPath, "write the decrypted export to this file")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
