package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"lastseen/internal/calendar"
	"lastseen/internal/logging"
	"lastseen/internal/services/llm"
)

// ReasonParseFail marks a reply that failed decoding or schema validation.
const ReasonParseFail = "parse-fail"

const (
	actionShow = "SHOW"
	actionHide = "HIDE"
)

// Completer is the oracle transport. *llm.Client satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Result is the validated oracle verdict.
type Result struct {
	Show       bool
	Normalized string
	Reason     string
}

// Classifier asks the oracle whether an event's location may be shown.
type Classifier struct {
	oracle Completer
	logger *slog.Logger
}

// New returns a classifier over oracle.
func New(oracle Completer, logger *slog.Logger) *Classifier {
	return &Classifier{
		oracle: oracle,
		logger: logging.NewComponentLogger(logger, "classify"),
	}
}

// Classify sends ev to the oracle. Transport failures are returned as errors;
// malformed or empty replies, refusals included, become
// Result{Show: false, Reason: "parse-fail"}.
func (c *Classifier) Classify(ctx context.Context, ev calendar.Event) (Result, error) {
	if c.oracle == nil {
		return Result{}, errors.New("classify: oracle not configured")
	}
	content, err := c.oracle.CompleteJSON(ctx, PolicyPrompt, userPrompt(ev))
	if errors.Is(err, llm.ErrEmptyContent) {
		return c.failClosed(ctx, ev, err), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("classify %s: %w", ev.ID, err)
	}
	result, err := parseReply(content)
	if err != nil {
		return c.failClosed(ctx, ev, err), nil
	}
	return result, nil
}

func (c *Classifier) failClosed(ctx context.Context, ev calendar.Event, cause error) Result {
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "oracle reply rejected", "oracle_parse_failed",
		logging.String("event_id", ev.ID),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "inspect the model output or refusal; the event stays hidden until its time or location changes or the cache is cleared"),
		logging.String(logging.FieldImpact, "event recorded as HIDE"),
	)
	return Result{Show: false, Reason: ReasonParseFail}
}

func userPrompt(ev calendar.Event) string {
	return fmt.Sprintf(userPromptTemplate,
		strings.TrimSpace(ev.Summary),
		strings.TrimSpace(ev.Location),
		strings.TrimSpace(ev.Description),
	)
}

// parseReply enforces the reply schema: action is "SHOW" or "HIDE";
// normalized_place and reason, when present, are strings. Other keys are
// ignored.
func parseReply(content string) (Result, error) {
	var fields map[string]json.RawMessage
	if err := llm.DecodeLLMJSON(content, &fields); err != nil {
		return Result{}, err
	}
	if fields == nil {
		return Result{}, errors.New("reply is not an object")
	}

	action, ok, err := stringField(fields, "action")
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, errors.New("action missing")
	}
	action = strings.TrimSpace(action)
	if action != actionShow && action != actionHide {
		return Result{}, fmt.Errorf("action %q is not SHOW or HIDE", action)
	}

	normalized, _, err := stringField(fields, "normalized_place")
	if err != nil {
		return Result{}, err
	}
	reason, _, err := stringField(fields, "reason")
	if err != nil {
		return Result{}, err
	}
	return Result{
		Show:       action == actionShow,
		Normalized: strings.TrimSpace(normalized),
		Reason:     strings.TrimSpace(reason),
	}, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool, error) {
	raw, ok := fields[name]
	if !ok {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil || strings.TrimSpace(string(raw)) == "null" {
		return "", false, fmt.Errorf("%s must be a string", name)
	}
	return value, true, nil
}
