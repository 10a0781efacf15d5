package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// vevent is a VEVENT before recurrence expansion.
type vevent struct {
	uid         string
	summary     string
	description string
	location    string
	status      Status
	visibility  Visibility

	start  time.Time
	end    time.Time
	allDay bool

	rrule        string
	exdates      []time.Time
	recurrenceID *time.Time
}

func (v vevent) duration() time.Duration {
	if d := v.end.Sub(v.start); d > 0 {
		return d
	}
	return 0
}

// parseFeed decodes an iCalendar payload. Malformed VEVENTs are logged and
// skipped; a payload that is not a calendar at all is an error.
func parseFeed(body []byte, loc *time.Location, logger *slog.Logger) ([]vevent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty calendar payload")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	components := cal.Events()
	out := make([]vevent, 0, len(components))
	for _, comp := range components {
		ev, err := parseVEvent(comp, loc)
		if err != nil {
			logger.Debug("skipping malformed calendar entry", slog.String("reason", err.Error()))
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (vevent, error) {
	var out vevent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || strings.TrimSpace(uid.Value) == "" {
		return out, errors.New("missing UID")
	}
	out.uid = strings.TrimSpace(uid.Value)
	out.summary = propertyValue(ve, ical.ComponentPropertySummary)
	out.description = propertyValue(ve, ical.ComponentPropertyDescription)
	out.location = propertyValue(ve, ical.ComponentPropertyLocation)
	out.status = parseStatus(propertyValue(ve, ical.ComponentPropertyStatus))
	out.visibility = parseClass(propertyValue(ve, ical.ComponentPropertyClass))

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.allDay = isDateValue(&dtStart.BaseProperty)

	start, err := parsePropertyTime(&dtStart.BaseProperty, loc)
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.start = start

	switch {
	case ve.GetProperty(ical.ComponentPropertyDtEnd) != nil:
		end, err := parsePropertyTime(&ve.GetProperty(ical.ComponentPropertyDtEnd).BaseProperty, loc)
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
		out.end = end
	case ve.GetProperty(ical.ComponentPropertyDuration) != nil:
		d, err := parseDuration(ve.GetProperty(ical.ComponentPropertyDuration).Value)
		if err != nil {
			return out, fmt.Errorf("DURATION: %w", err)
		}
		out.end = start.Add(d)
	case out.allDay:
		out.end = start.AddDate(0, 0, 1)
	default:
		out.end = start
	}

	if rr := ve.GetProperty(ical.ComponentPropertyRrule); rr != nil {
		out.rrule = strings.TrimSpace(rr.Value)
	}
	for _, prop := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(prop.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			single := prop.BaseProperty
			single.Value = part
			if t, err := parsePropertyTime(&single, loc); err == nil {
				out.exdates = append(out.exdates, t)
			}
		}
	}
	if rid := ve.GetProperty(ical.ComponentPropertyRecurrenceId); rid != nil {
		if t, err := parsePropertyTime(&rid.BaseProperty, loc); err == nil {
			out.recurrenceID = &t
		}
	}
	return out, nil
}

func propertyValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func parseStatus(value string) Status {
	switch strings.ToUpper(value) {
	case "CANCELLED":
		return StatusCancelled
	case "TENTATIVE":
		return StatusTentative
	default:
		return StatusConfirmed
	}
}

func parseClass(value string) Visibility {
	switch strings.ToUpper(value) {
	case "PUBLIC":
		return VisibilityPublic
	case "PRIVATE":
		return VisibilityPrivate
	case "CONFIDENTIAL":
		return VisibilityConfidential
	default:
		return VisibilityDefault
	}
}

func isDateValue(prop *ical.BaseProperty) bool {
	if vs, ok := prop.ICalParameters[string(ical.ParameterValue)]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

// parsePropertyTime interprets a DATE or DATE-TIME value. UTC values keep UTC,
// TZID values use that zone, and floating values and dates use loc.
func parsePropertyTime(prop *ical.BaseProperty, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(prop.Value)
	if value == "" {
		return time.Time{}, errors.New("empty time value")
	}
	zone := loc
	if tzids, ok := prop.ICalParameters["TZID"]; ok && len(tzids) == 1 {
		if tz, err := time.LoadLocation(strings.Trim(tzids[0], `"`)); err == nil {
			zone = tz
		}
	}
	switch {
	case strings.HasSuffix(value, "Z"):
		return time.Parse("20060102T150405Z", value)
	case strings.Contains(value, "T"):
		return time.ParseInLocation("20060102T150405", value, zone)
	default:
		return time.ParseInLocation("20060102", value, loc)
	}
}

var durationPattern = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration handles RFC 5545 DURATION values such as PT1H30M or P1D.
func parseDuration(value string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(value)))
	if m == nil || value == "P" || value == "PT" {
		return 0, fmt.Errorf("unsupported duration %q", value)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return 0, err
		}
		total += time.Duration(n) * unit
	}
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}
