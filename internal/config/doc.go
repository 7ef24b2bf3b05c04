// Package config loads corpuschunk settings from TOML.
//
// Lookup order: an explicit path, ./corpuschunk.toml, then
// ~/.config/corpuschunk/config.toml. A missing file is not an error; the
// defaults apply. CORPUSCHUNK_* environment variables override file values.
package config
