package rule

import (
	"errors"
	"strings"
)

// Spec is the declarative form of a Rule as it appears in JSON/YAML flow
// definitions. Exactly one of Equals, NotEquals, Present or Expr is set.
type Spec struct {
	Equals    []string `json:"equals,omitempty" yaml:"equals,omitempty"`
	NotEquals []string `json:"notEquals,omitempty" yaml:"notEquals,omitempty"`
	Present   bool     `json:"present,omitempty" yaml:"present,omitempty"`
	Expr      string   `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// Build converts the spec into a Rule.
func (s Spec) Build() (Rule, error) {
	set := 0
	if len(s.Equals) > 0 {
		set++
	}
	if len(s.NotEquals) > 0 {
		set++
	}
	if s.Present {
		set++
	}
	if strings.TrimSpace(s.Expr) != "" {
		set++
	}
	switch {
	case set == 0:
		return nil, errors.New("rule: spec is empty")
	case set > 1:
		return nil, errors.New("rule: spec must set exactly one of equals, notEquals, present, expr")
	}

	switch {
	case len(s.Equals) > 0:
		return Equals(s.Equals...), nil
	case len(s.NotEquals) > 0:
		return NotEquals(s.NotEquals...), nil
	case s.Present:
		return Present(), nil
	default:
		return Expr(s.Expr)
	}
}
