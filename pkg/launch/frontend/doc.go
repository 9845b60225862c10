// SPDX-License-Identifier: MPL-2.0

// Package frontend loads launch files into launch descriptions.
//
// Each supported file format has a Frontend that decodes the file into a tree of
// Elements. A single Parser then maps elements to launch entities, so every format
// accepts the same actions and attributes:
//
//	<launch>
//	  <arg name="greeting" default="world"/>
//	  <executable cmd="echo hello $(var greeting)"/>
//	</launch>
//
// is equivalent to the YAML document
//
//	launch:
//	  - arg: {name: greeting, default: world}
//	  - executable: {cmd: "echo hello $(var greeting)"}
//
// Attribute values are parsed as substitutions; $(dirname) and $(filename) refer to the
// file the attribute was read from.
package frontend
