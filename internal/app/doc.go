// Package app contains the core application logic. It owns the engine
// runtime for the duration of one export, runs the export pipeline and turns
// pipeline failures into diagnostics, decoupled from any specific
// entrypoint like a CLI.
package app
