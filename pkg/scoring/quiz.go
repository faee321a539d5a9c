// Package scoring derives the fundability score of a quiz answer set. Score
// is pure: identical answers always produce an identical Result.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/rule"
)

// Binary answers recognised by yes/no questions.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// Impact holds the points awarded for each answer of a yes/no question.
type Impact struct {
	Yes int `json:"yes" yaml:"yes"`
	No  int `json:"no" yaml:"no"`
}

// Tier is one outcome of a question scored by lookup rather than yes/no.
type Tier struct {
	Answer      string `json:"answer" yaml:"answer"`
	Points      int    `json:"points" yaml:"points"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FollowUp is an informational refinement asked when Question's answer
// matches When. It does not change the points.
type FollowUp struct {
	Key     string    `json:"key" yaml:"key"`
	Prompt  string    `json:"prompt" yaml:"prompt"`
	Options []string  `json:"options,omitempty" yaml:"options,omitempty"`
	When    rule.Rule `json:"-" yaml:"-"`
}

// Question is a scored quiz question. Exactly one of Impact or Tiers is
// used: a question with Tiers is scored by lookup.
type Question struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Prompt   string    `json:"prompt" yaml:"prompt"`
	Impact   Impact    `json:"impact" yaml:"impact"`
	Tiers    []Tier    `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	Positive string    `json:"positive,omitempty" yaml:"positive,omitempty"`
	Negative string    `json:"negative,omitempty" yaml:"negative,omitempty"`
	FollowUp *FollowUp `json:"followUp,omitempty" yaml:"-"`
}

// Tiered reports whether the question is scored by tier lookup.
func (q Question) Tiered() bool {
	return len(q.Tiers) > 0
}

// Options returns the selectable answers in display order.
func (q Question) Options() []string {
	if !q.Tiered() {
		return []string{AnswerYes, AnswerNo}
	}
	out := make([]string, 0, len(q.Tiers))
	for _, t := range q.Tiers {
		out = append(out, t.Answer)
	}
	return out
}

// MaxPoints returns the best achievable points.
func (q Question) MaxPoints() int {
	if !q.Tiered() {
		return max(q.Impact.Yes, q.Impact.No)
	}
	best := q.Tiers[0].Points
	for _, t := range q.Tiers[1:] {
		best = max(best, t.Points)
	}
	return best
}

// MinPoints returns the worst achievable points.
func (q Question) MinPoints() int {
	if !q.Tiered() {
		return min(q.Impact.Yes, q.Impact.No)
	}
	worst := q.Tiers[0].Points
	for _, t := range q.Tiers[1:] {
		worst = min(worst, t.Points)
	}
	return worst
}

// Quiz is a validated, ordered question list whose maximum points add up to
// its ceiling.
type Quiz struct {
	ceiling   int
	questions []Question
}

// NewQuiz validates questions against ceiling. Adding or removing a question
// without rebalancing weights is rejected rather than silently drifting.
func NewQuiz(ceiling int, questions []Question) (*Quiz, error) {
	var errs []error
	if ceiling <= 0 {
		errs = append(errs, fmt.Errorf("scoring: ceiling must be positive, got %d", ceiling))
	}
	if len(questions) == 0 {
		errs = append(errs, errors.New("scoring: quiz requires at least one question"))
	}

	seen := make(map[string]struct{}, len(questions))
	total := 0
	for i, q := range questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("scoring: question %d: id required", i))
			continue
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("scoring: question %q: duplicate id", id))
		}
		seen[id] = struct{}{}

		if q.Tiered() {
			answers := make(map[string]struct{}, len(q.Tiers))
			for _, t := range q.Tiers {
				key := strings.ToLower(strings.TrimSpace(t.Answer))
				if key == "" {
					errs = append(errs, fmt.Errorf("scoring: question %q: tier answer required", id))
					continue
				}
				if _, dup := answers[key]; dup {
					errs = append(errs, fmt.Errorf("scoring: question %q: duplicate tier %q", id, t.Answer))
				}
				answers[key] = struct{}{}
			}
		}
		if fu := q.FollowUp; fu != nil && (strings.TrimSpace(fu.Key) == "" || fu.When == nil) {
			errs = append(errs, fmt.Errorf("scoring: question %q: follow-up requires key and trigger", id))
		}
		if q.MinPoints() < 0 {
			errs = append(errs, fmt.Errorf("scoring: question %q: negative points", id))
		}
		total += q.MaxPoints()
	}
	if ceiling > 0 && len(questions) > 0 && total != ceiling {
		errs = append(errs, fmt.Errorf("scoring: maximum points sum to %d, ceiling is %d", total, ceiling))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Quiz{ceiling: ceiling, questions: append([]Question(nil), questions...)}, nil
}

// Ceiling returns the maximum achievable score.
func (q *Quiz) Ceiling() int { return q.ceiling }

// Questions returns a copy of the ordered questions.
func (q *Quiz) Questions() []Question {
	return append([]Question(nil), q.questions...)
}

// Question looks up a question by id.
func (q *Quiz) Question(id string) (Question, bool) {
	for _, question := range q.questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}
