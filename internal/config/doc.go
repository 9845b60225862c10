// SPDX-License-Identifier: MPL-2.0

// Package config handles launchdump configuration using Viper with CUE as the file format.
//
// Configuration is read from the file named by --config, or else from
// $XDG_CONFIG_HOME/launchdump/config.cue (platform equivalents on macOS and Windows),
// or else from ./config.cue. Files are validated against the embedded #Config schema.
// LAUNCHDUMP_* environment variables override file values.
package config
