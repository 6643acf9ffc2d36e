// Package main provides the festadmin command-line interface.
//
// Commands operate directly on the configured document store: migrate-media
// rewrites legacy media fields into canonical form, check-media audits them,
// the media subcommands edit a single record through the role accessors, and
// import loads JSON exports. Configuration comes from the TOML file resolved
// by --config (or the default path).
package main
