// Package config holds the smctl configuration (~/.smctl/config.yaml).
//
// Values are merged from defaults, the YAML file, SMCTL_* environment
// variables and command-line flags, in increasing priority. The API key
// may be stored sealed with a passphrase (see secretbox).
package config
