// Package calendar models raw calendar events and the sources that list them.
//
// Event is the immutable input to the decision pipeline. ICSSource reads an
// iCalendar feed from an http(s) URL or a local file, expands recurring
// events into single instances inside the requested window, and returns them
// ordered by start time and capped at the configured maximum.
package calendar
