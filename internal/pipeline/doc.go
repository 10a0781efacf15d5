// Package pipeline decides the SHOW/HIDE verdict for calendar events.
//
// Each undecided event moves through a fixed sequence:
//
//	Pending -> HeuristicRejected -> Hidden
//	Pending -> HeuristicPassed -> OracleRejected -> Hidden
//	Pending -> HeuristicPassed -> OracleAccepted -> Normalized -> Shown
//
// Events whose key already has a verdict are Skipped without any external
// call. Every terminal transition writes exactly one record into the cache;
// a failure in the oracle or normalizer leaves the event Pending and is
// returned to the caller. Persisting the cache is the caller's job.
package pipeline
