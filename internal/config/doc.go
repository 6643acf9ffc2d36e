// Package config loads, normalizes, and validates festadmin configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FESTADMIN_MONGO_URI. The Config type centralizes the store selection,
// migration sweep settings, and logging knobs the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
