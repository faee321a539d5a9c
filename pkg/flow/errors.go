package flow

import (
	"errors"
	"strings"
)

var (
	// ErrBusy is returned when a transition is requested while a commit
	// started by a previous advance is still in flight.
	ErrBusy = errors.New("flow: commit in flight")
	// ErrSubmitted is returned by every transition once the application has
	// been submitted.
	ErrSubmitted = errors.New("flow: already submitted")
	// ErrAtFirstStep is returned by Back on the first reachable step.
	ErrAtFirstStep = errors.New("flow: already at first step")
	// ErrNoFollowUp is returned by ResolveFollowUp when no follow-up is open.
	ErrNoFollowUp = errors.New("flow: no follow-up pending")
	// ErrFollowUpPending is returned by Advance while a follow-up is open.
	ErrFollowUpPending = errors.New("flow: follow-up pending")
)

// Rule names the validation rule a value failed.
type Rule string

const (
	RuleMissing    Rule = "missing"
	RuleMalformed  Rule = "malformed"
	RuleOutOfRange Rule = "out-of-range"
	RuleZipLength  Rule = "zip-length"
	RuleSelection  Rule = "selection"
	RuleConsent    Rule = "consent"
)

// ValidationError is a single failed rule for one form key.
type ValidationError struct {
	Key     string `json:"key"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Key + ": " + e.Message
}

// ValidationErrors aggregates every rule that failed for a transition.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "flow: validation failed: " + strings.Join(parts, "; ")
}

// Fields groups messages by key, trimming and de-duplicating them while
// keeping their order.
func (v ValidationErrors) Fields() map[string][]string {
	if len(v) == 0 {
		return nil
	}
	grouped := make(map[string][]string)
	for _, e := range v {
		grouped[e.Key] = append(grouped[e.Key], e.Message)
	}
	out := make(map[string][]string, len(grouped))
	for key, messages := range grouped {
		if normalized := normalizeMessages(messages); len(normalized) > 0 {
			out[key] = normalized
		}
	}
	return out
}

// IsValidation reports whether err carries validation failures.
func IsValidation(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}

// HasRule reports whether err contains a failure of rule.
func HasRule(err error, rule Rule) bool {
	var v ValidationErrors
	if !errors.As(err, &v) {
		return false
	}
	for _, e := range v {
		if e.Rule == rule {
			return true
		}
	}
	return false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
