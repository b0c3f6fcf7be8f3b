package config

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/dmitrijs2005/vaultport/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	Input            *string `json:"input"`
	Output           *string `json:"output"`
	TOTPOutput       *string `json:"totp_output"`
	LogLevel         *string `json:"log_level"`
	LogFormat        *string `json:"log_format"`
	DebugDump        *string `json:"debug_dump"`
	SourcePassphrase *string `json:"source_passphrase"`
	OutputPassphrase *string `json:"output_passphrase"`
	TOTPPassphrase   *string `json:"totp_passphrase"`
}

// parseJson overlays cfg with the file named by -c or -config in args. Without
// either flag nothing happens.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.InputPath, jc.Input)
	setString(&cfg.OutputPath, jc.Output)
	setString(&cfg.TOTPPath, jc.TOTPOutput)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.DebugDumpPath, jc.DebugDump)
	setBytes(&cfg.SourcePassphrase, jc.SourcePassphrase)
	setBytes(&cfg.OutputPassphrase, jc.OutputPassphrase)
	setBytes(&cfg.TOTPPassphrase, jc.TOTPPassphrase)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBytes(dst *[]byte, v *string) {
	if v != nil && *v != "" {
		*dst = []byte(*v)
	}
}
