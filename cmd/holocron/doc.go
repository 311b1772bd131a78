// Package main hosts the holocron CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into envelope
// sessions, album queries, and configuration scaffolding. It centralizes
// configuration resolution, storage selection, and structured logging setup
// so subcommands can focus on presentation instead of wiring.
//
// Keep this package lean: state, concurrency, and failure handling live in the
// internal packages; commands here only prompt, render, and report.
package main
