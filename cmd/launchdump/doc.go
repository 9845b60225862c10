// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the launchdump command line.
//
// launchdump evaluates a launch description without starting anything and prints,
// for every process the description would launch, one tab-prefixed line holding the
// fully resolved command as double-quoted tokens.
package cmd
