// SPDX-License-Identifier: MPL-2.0

// Package dump evaluates a launch description without starting anything and prints the
// fully resolved command line of every process it would launch.
//
// The walk visits entities depth-first in document order against one shared
// launch.Context. A failing entity is reported and skipped; its siblings are still
// visited. Each materialized process launch becomes one line on the real standard output,
// prefixed with a tab, while anything else the entities print is discarded.
package dump
