// Package main hosts the lastseen CLI entrypoint and command graph.
//
// The Cobra command tree exposes one-shot runs (batch, incremental,
// run-once) meant to be triggered by an external scheduler, plus inspection
// commands for the published status, the verdict cache, collaborator health
// and configuration scaffolding. Concrete clients are built here and handed
// to the internal packages; nothing below cmd/ constructs its own
// collaborators.
package main
