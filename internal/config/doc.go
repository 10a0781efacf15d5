// Package config loads, normalizes, and validates lastseen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and GOOGLE_MAPS_API_KEY. The Config type centralizes every
// knob the batch and incremental runs need, so calendar, oracle, geocoder, and
// store settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
