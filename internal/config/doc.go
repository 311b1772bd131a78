// Package config loads, normalizes, and validates holocron configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours HOLOCRON_* environment overrides.
// The Config type centralizes every knob the CLI and core components need:
// data and log directories, the remote catalog endpoint, envelope cooldown
// timing, and the storage backend used for the album and cooldown blobs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
