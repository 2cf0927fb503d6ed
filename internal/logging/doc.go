// SPDX-License-Identifier: EPL-2.0

// Package logging builds the zap logger shared by the CLI and the engine.
package logging
