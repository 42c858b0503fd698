// Package main hosts the vidsift CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the duplicate analysis pipeline:
// scanning a library, reviewing and selecting duplicates, applying actions,
// and maintaining the probe cache and configuration. It centralizes config
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
