// SPDX-License-Identifier: EPL-2.0

// Package config loads stemdeck's TOML configuration.
//
// Load looks at an explicit path first, then ~/.config/stemdeck/config.toml,
// then ./stemdeck.toml. Missing files are not an error: defaults apply.
// Paths starting with ~ are expanded and made absolute.
package config
