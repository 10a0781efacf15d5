package heuristic

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"lastseen/internal/calendar"
	"lastseen/internal/config"
)

// Rejection reasons. They are logged with the decision and never persisted.
const (
	ReasonCancelled  = "cancelled"
	ReasonNoLocation = "no-location"
	ReasonVirtual    = "virtual"
	ReasonDenylist   = "denylist"
	ReasonPrivate    = "private"
)

// streetAddress matches a house number followed by a common street suffix.
var streetAddress = regexp.MustCompile(`(?i)\d{1,6}\s+.+\b(St|Ave|Blvd|Rd|Road|Street|Avenue|Boulevard|Lane|Ln|Dr|Drive)\b`)

// Result is the outcome of one evaluation. Reason is empty when Pass is true.
type Result struct {
	Pass   bool
	Reason string
}

// Options configures a Filter. Nil keyword or marker lists fall back to the
// defaults in the config package; an empty non-nil list disables that rule.
type Options struct {
	DenyKeywords   []string
	VirtualMarkers []string
	RejectPrivate  bool
}

// Filter evaluates events against the configured policy. A Filter is
// immutable and safe for concurrent use.
type Filter struct {
	deny          []*regexp.Regexp
	virtual       []*regexp.Regexp
	rejectPrivate bool
}

// New compiles the keyword and marker lists.
func New(opts Options) *Filter {
	keywords := opts.DenyKeywords
	if keywords == nil {
		keywords = config.DefaultDenyKeywords
	}
	markers := opts.VirtualMarkers
	if markers == nil {
		markers = config.DefaultVirtualMarkers
	}
	folder := cases.Fold()
	return &Filter{
		deny:          compileWords(folder, keywords),
		virtual:       compileWords(folder, markers),
		rejectPrivate: opts.RejectPrivate,
	}
}

// FromConfig builds a Filter from the heuristics section.
func FromConfig(cfg config.Heuristics) *Filter {
	return New(Options{
		DenyKeywords:   cfg.DenyKeywords,
		VirtualMarkers: cfg.VirtualMarkers,
		RejectPrivate:  cfg.RejectPrivate,
	})
}

// compileWords turns each phrase into a pattern that only matches on word
// boundaries, so "law" does not match "lawn" and "ste" does not match "steak".
func compileWords(folder cases.Caser, words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(folder.String(word))
		if word == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`(?:^|[^\p{L}\p{N}])`+regexp.QuoteMeta(word)+`(?:$|[^\p{L}\p{N}])`))
	}
	return out
}

// Evaluate applies the rules in order: cancelled, no location, private (when
// enabled), virtual, denylist.
func (f *Filter) Evaluate(ev calendar.Event) Result {
	if ev.Cancelled() {
		return Result{Reason: ReasonCancelled}
	}
	location := strings.TrimSpace(ev.Location)
	if location == "" {
		return Result{Reason: ReasonNoLocation}
	}
	if f.rejectPrivate && ev.Private() {
		return Result{Reason: ReasonPrivate}
	}
	// Casers are stateful, so each evaluation folds with its own.
	folder := cases.Fold()
	if f.isVirtual(folder.String(location), location) {
		return Result{Reason: ReasonVirtual}
	}
	blob := folder.String(strings.Join([]string{ev.Summary, ev.Description, location}, " "))
	if matchAny(f.deny, blob) {
		return Result{Reason: ReasonDenylist}
	}
	return Result{Pass: true}
}

// isVirtual reports a remote-meeting marker with no street address alongside.
func (f *Filter) isVirtual(folded, location string) bool {
	if !matchAny(f.virtual, folded) {
		return false
	}
	return !streetAddress.MatchString(location)
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
