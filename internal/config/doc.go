// Package config loads, normalizes, and validates omzet configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files describing libraries and workflows. Task
// lists are resolved into the workflow package's tagged union at load time,
// so the runner and orchestrator never see unvalidated task definitions.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical intervals, and clear validation errors.
package config
