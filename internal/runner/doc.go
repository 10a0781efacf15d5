// Package runner orchestrates one invocation of lastseen.
//
// Batch enumerates upcoming events, decides the undecided ones and persists
// the verdict cache once. Incremental enumerates recently completed events,
// optionally decides undecided ones, selects the latest shown event and
// publishes it. RunOnce runs both under a single lock.
//
// Runs on one host are serialized with an advisory file lock held for the
// whole load-decide-persist cycle. Every run gets a uuid run id that is
// attached to the context and therefore to every log line.
package runner
