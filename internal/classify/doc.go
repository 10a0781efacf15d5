// Package classify adapts the chat completion oracle into a SHOW/HIDE
// classifier for calendar locations.
//
// The classifier sends a fixed policy prompt and the event's title, location
// and description, then validates the JSON reply against a strict schema.
// Replies that cannot be decoded or fail the schema are reported as a HIDE
// with reason "parse-fail" and no error; only transport failures surface as
// errors.
package classify
