package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gookit/validate"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of one conversion run.
type Config struct {
	InputPath     string `validate:"required"`
	OutputPath    string `validate:"required|neField:InputPath"`
	TOTPPath      string `validate:"neField:OutputPath|neField:InputPath"`
	LogLevel      string `validate:"required|in:debug,info,warn,error"`
	LogFormat     string `validate:"required|in:text,json,console"`
	DebugDumpPath string `validate:"neField:InputPath|neField:OutputPath|neField:TOTPPath"`

	// Empty passphrases are prompted for.
	SourcePassphrase []byte
	OutputPassphrase []byte
	TOTPPassphrase   []byte
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, the JSON file named by -c/-config
// and the remaining flags of args, in that order of precedence. The result is
// validated.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes enumerated values and checks required and mutually
// distinct paths.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, v.Errors.One())
	}
	return nil
}

// WantsTOTP reports whether a one-time-password database should be written.
func (c *Config) WantsTOTP() bool { return c.TOTPPath != "" }
