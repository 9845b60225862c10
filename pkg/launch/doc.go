// SPDX-License-Identifier: MPL-2.0

// Package launch models ROS 2 style launch descriptions: a tree of entities (actions, groups,
// includes, argument declarations) evaluated against a shared Context.
//
// Visiting an entity evaluates it and may return child entities. Process-launch actions only
// materialize their ProcessDetails when visited; they never start a process. Command tokens
// and attribute values are Substitutions that resolve to strings against the Context.
package launch
