package calendar

import (
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"
)

const maxOccurrencesPerEvent = 1000

// expandEvents turns parsed VEVENTs into single instances overlapping
// [start, end]. Recurring masters are expanded with their RRULE minus EXDATEs;
// instances with a RECURRENCE-ID override replace the generated occurrence.
func expandEvents(parsed []vevent, start, end time.Time, loc *time.Location, logger *slog.Logger) []Event {
	overridden := make(map[string]map[int64]struct{})
	for _, ev := range parsed {
		if ev.recurrenceID == nil {
			continue
		}
		if overridden[ev.uid] == nil {
			overridden[ev.uid] = make(map[int64]struct{})
		}
		overridden[ev.uid][ev.recurrenceID.Unix()] = struct{}{}
	}

	out := make([]Event, 0, len(parsed))
	for _, ev := range parsed {
		switch {
		case ev.recurrenceID != nil:
			if overlaps(ev.start, ev.end, start, end) {
				out = append(out, ev.instance(instanceID(ev.uid, *ev.recurrenceID, ev.allDay), ev.start, ev.end, loc))
			}
		case ev.rrule == "":
			if overlaps(ev.start, ev.end, start, end) {
				out = append(out, ev.instance(ev.uid, ev.start, ev.end, loc))
			}
		default:
			out = append(out, expandRecurring(ev, overridden[ev.uid], start, end, loc, logger)...)
		}
	}
	return out
}

func expandRecurring(ev vevent, overridden map[int64]struct{}, start, end time.Time, loc *time.Location, logger *slog.Logger) []Event {
	rule, err := rrule.StrToRRule(ev.rrule)
	if err != nil {
		logger.Debug("skipping unparseable recurrence rule",
			slog.String("uid", ev.uid),
			slog.String("rrule", ev.rrule),
			slog.String("reason", err.Error()),
		)
		return nil
	}
	rule.DTStart(ev.start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.exdates {
		set.ExDate(ex.In(ev.start.Location()))
	}

	// Occurrences that began before the window may still overlap it.
	dur := ev.duration()
	from := start.Add(-dur).In(ev.start.Location())
	occurrences := set.Between(from, end.In(ev.start.Location()), true)
	if len(occurrences) > maxOccurrencesPerEvent {
		logger.Debug("recurrence expansion truncated", slog.String("uid", ev.uid), slog.Int("cap", maxOccurrencesPerEvent))
		occurrences = occurrences[:maxOccurrencesPerEvent]
	}

	out := make([]Event, 0, len(occurrences))
	for _, occStart := range occurrences {
		if _, ok := overridden[occStart.Unix()]; ok {
			continue
		}
		occEnd := occStart.Add(dur)
		if ev.allDay {
			occEnd = occStart.AddDate(0, 0, max(1, int(dur.Round(24*time.Hour)/(24*time.Hour))))
		}
		if !overlaps(occStart, occEnd, start, end) {
			continue
		}
		out = append(out, ev.instance(instanceID(ev.uid, occStart, ev.allDay), occStart, occEnd, loc))
	}
	return out
}

func (v vevent) instance(id string, start, end time.Time, loc *time.Location) Event {
	ev := Event{
		ID:          id,
		Summary:     v.summary,
		Description: v.description,
		Location:    v.location,
		Status:      v.status,
		Visibility:  v.visibility,
	}
	if v.allDay {
		ev.Start = OnDate(start.Format(DateLayout))
		ev.End = OnDate(end.Format(DateLayout))
	} else {
		ev.Start = At(start.In(loc))
		ev.End = At(end.In(loc))
	}
	return ev
}

// instanceID mirrors the "<uid>_<original start>" form hosted calendars use
// for single instances of a recurring series.
func instanceID(uid string, original time.Time, allDay bool) string {
	if allDay {
		return uid + "_" + original.Format("20060102")
	}
	return uid + "_" + original.UTC().Format("20060102T150405Z")
}

// overlaps reports whether [aStart, aEnd] intersects the window. Zero-length
// events count when they fall inside it.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(aStart) {
		aEnd = aStart
	}
	if aEnd.Equal(aStart) {
		return !aStart.Before(bStart) && !aStart.After(bEnd)
	}
	return aEnd.After(bStart) && aStart.Before(bEnd)
}
