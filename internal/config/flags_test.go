package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name:     "all flags",
			args:     []string{"-i", "in.pgp", "-o", "out.vdb", "-t", "totp.vdb", "-l", "warn", "-f", "json", "-d", "dump.json"},
			expected: &Config{InputPath: "in.pgp", OutputPath: "out.vdb", TOTPPath: "totp.vdb", LogLevel: "warn", LogFormat: "json", DebugDumpPath: "dump.json"},
		},
		{
			name:     "config flag is ignored",
			args:     []string{"-c", "cfg.json", "-i", "in.pgp"},
			expected: &Config{InputPath: "in.pgp", LogLevel: "info", LogFormat: "text"},
		},
		{
			name:     "equals form",
			args:     []string{"-o=out.vdb"},
			expected: &Config{OutputPath: "out.vdb", LogLevel: "info", LogFormat: "text"},
		},
		{
			name:    "missing value",
			args:    []string{"-i"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
