// Package services defines shared utilities consumed by the decision pipeline,
// the run orchestration, and the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, run modes, and event keys for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify collaborator
//     failures (transient, configuration, malformed input) consistently.
//
// Use these helpers when wiring new collaborators so operational behaviour
// (error handling, observability) stays uniform across batch and incremental
// runs.
package services
