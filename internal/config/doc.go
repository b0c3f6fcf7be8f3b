// Package config loads runtime configuration for vaultport.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-i string   path of the export to convert
//	-o string   path of the password database to create
//	-t string   path of the optional one-time-password database
//	-l string   log level: debug, info, warn, error
//	-f string   log format: text, json, console
//	-d string   write the decrypted export to this file (mode 0600)
//
// # JSON schema
//
// Passphrases can only be given in the JSON file; they are never accepted on
// the command line, where other users could read them from the process list.
//
//	{
//	  "input": "export.pgp",
//	  "output": "passwords.vdb",
//	  "totp_output": "totp.vdb",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "debug_dump": "",
//	  "source_passphrase": "...",
//	  "output_passphrase": "...",
//	  "totp_passphrase": "..."
//	}
package config
