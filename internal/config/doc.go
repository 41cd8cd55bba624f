// Package config resolves the board settings and the inspection server
// settings from multiple sources (YAML files, environment variables named
// after the firmware constants, CLI flags) with precedence: CLI flags > YAML
// config > Environment variables > Defaults. Validation runs once, after all
// sources are applied.
package config
