// Package confloader provides the configuration loading mechanism.
//
// It uses koanf to merge several sources into one typed struct. Priority,
// highest first:
//
//  1. Overrides (command-line flags)
//  2. Environment variables (SMCTL_ prefix, "__" separates nested keys)
//  3. Configuration file (YAML)
//  4. Defaults
//
// Watcher reports changes of a configuration file so long-running
// sessions such as the REPL can apply them without a restart.
package confloader
