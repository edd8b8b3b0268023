// Package config loads, normalizes, and validates subconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SUBCONV_FFMPEG. The Config type centralizes every knob the CLI needs so the
// converter binary, extensions, and state directory are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
