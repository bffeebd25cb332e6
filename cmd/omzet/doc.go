// Package main hosts the omzet CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into workflow
// runs, configuration scaffolding, dependency checks, and history queries.
// It centralizes configuration resolution so subcommands can focus on user
// experience instead of wiring.
package main
