package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned by Registry.Field for keys the registry does
// not own.
var ErrUnknownField = errors.New("model: unknown field")

// Field describes one FormState slot resolved from a registry key.
type Field struct {
	Key  string
	Step int
	Kind StepKind
	Mask Mask
	Max  *int
	// Part is set for address sub-keys.
	Part AddressPart
	// FollowUp is true when the key belongs to a step's follow-up question.
	FollowUp bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClearIdentityOnSubmit makes a successful final submission forget the
// cached draft identity, returning a shared workstation to a blank slate.
func WithClearIdentityOnSubmit(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.clearIdentityOnSubmit = enabled
	}
}

// Registry is the validated, ordered list of steps for one intake flow.
type Registry struct {
	name                  string
	steps                 []StepDescriptor
	fields                map[string]Field
	clearIdentityOnSubmit bool
}

// NewRegistry validates steps and builds a registry. Every violation is
// reported; the returned error joins them.
func NewRegistry(name string, steps []StepDescriptor, opts ...RegistryOption) (*Registry, error) {
	reg := &Registry{
		name:   strings.TrimSpace(name),
		steps:  append([]StepDescriptor(nil), steps...),
		fields: make(map[string]Field),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}

	var errs []error
	if len(reg.steps) == 0 {
		errs = append(errs, errors.New("model: registry requires at least one step"))
	}

	stepKeys := make(map[string]struct{}, len(reg.steps))
	terminals := 0
	for i, step := range reg.steps {
		where := fmt.Sprintf("step %d (%s)", i, step.Key)
		if strings.TrimSpace(step.Key) == "" {
			errs = append(errs, fmt.Errorf("model: step %d: key required", i))
			continue
		}
		if _, dup := stepKeys[step.Key]; dup {
			errs = append(errs, fmt.Errorf("model: %s: duplicate step key", where))
		}
		stepKeys[step.Key] = struct{}{}
		if !step.Kind.Valid() {
			errs = append(errs, fmt.Errorf("model: %s: unknown kind %q", where, step.Kind))
			continue
		}
		if step.Kind.IsSelect() && len(step.Options) == 0 {
			errs = append(errs, fmt.Errorf("model: %s: %s requires options", where, step.Kind))
		}
		if step.Kind == KindAddressGroup && strings.TrimSpace(step.GroupPrefix) == "" {
			errs = append(errs, fmt.Errorf("model: %s: address group requires a prefix", where))
		}
		if step.Kind == KindTerminalConsent {
			terminals++
			if i != len(reg.steps)-1 {
				errs = append(errs, fmt.Errorf("model: %s: terminal consent must be the last step", where))
			}
			if step.ShowWhen != nil {
				errs = append(errs, fmt.Errorf("model: %s: terminal consent cannot be conditional", where))
			}
			if step.FollowUp != nil {
				errs = append(errs, fmt.Errorf("model: %s: terminal consent cannot have a follow-up", where))
			}
		}
		if step.ShowWhen != nil {
			if step.ShowWhen.When == nil {
				errs = append(errs, fmt.Errorf("model: %s: condition requires a rule", where))
			}
			if _, ok := reg.fields[step.ShowWhen.Key]; !ok {
				errs = append(errs, fmt.Errorf("model: %s: condition references unknown or later key %q", where, step.ShowWhen.Key))
			}
		}

		for _, key := range step.StateKeys() {
			field := Field{Key: key, Step: i, Kind: step.Kind, Mask: step.Mask, Max: step.Max}
			if step.Kind == KindAddressGroup {
				field.Part = AddressPart(strings.TrimPrefix(key, step.GroupPrefix))
				field.Mask = MaskNone
				if field.Part == AddressZip {
					field.Mask = MaskPostalCode
				}
			}
			errs = append(errs, reg.addField(where, field)...)
		}

		if fu := step.FollowUp; fu != nil {
			switch {
			case strings.TrimSpace(fu.Key) == "":
				errs = append(errs, fmt.Errorf("model: %s: follow-up key required", where))
			case !fu.Kind.Valid() || fu.Kind == KindAddressGroup || fu.Kind == KindTerminalConsent:
				errs = append(errs, fmt.Errorf("model: %s: follow-up kind %q not allowed", where, fu.Kind))
			default:
				if fu.When == nil {
					errs = append(errs, fmt.Errorf("model: %s: follow-up requires a trigger rule", where))
				}
				if fu.Kind.IsSelect() && len(fu.Options) == 0 {
					errs = append(errs, fmt.Errorf("model: %s: follow-up %s requires options", where, fu.Kind))
				}
				errs = append(errs, reg.addField(where, Field{
					Key: fu.Key, Step: i, Kind: fu.Kind, Mask: fu.Mask, FollowUp: true,
				})...)
			}
		}
	}
	if len(reg.steps) > 0 && terminals != 1 {
		errs = append(errs, fmt.Errorf("model: registry %q requires exactly one terminal consent step, found %d", reg.name, terminals))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

func (r *Registry) addField(where string, field Field) []error {
	if _, dup := r.fields[field.Key]; dup {
		return []error{fmt.Errorf("model: %s: duplicate field key %q", where, field.Key)}
	}
	r.fields[field.Key] = field
	return nil
}

// Name returns the flow name.
func (r *Registry) Name() string { return r.name }

// Len returns the number of steps including the terminal consent step.
func (r *Registry) Len() int { return len(r.steps) }

// Step returns the descriptor at index i.
func (r *Registry) Step(i int) (StepDescriptor, bool) {
	if i < 0 || i >= len(r.steps) {
		return StepDescriptor{}, false
	}
	return r.steps[i], true
}

// Steps returns a copy of the ordered descriptors.
func (r *Registry) Steps() []StepDescriptor {
	return append([]StepDescriptor(nil), r.steps...)
}

// TerminalIndex returns the index of the terminal consent step.
func (r *Registry) TerminalIndex() int { return len(r.steps) - 1 }

// Field resolves a FormState key.
func (r *Registry) Field(key string) (Field, error) {
	field, ok := r.fields[key]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return field, nil
}

// Fields returns every FormState key the registry owns.
func (r *Registry) Fields() []Field {
	out := make([]Field, 0, len(r.fields))
	for _, step := range r.steps {
		for _, key := range step.StateKeys() {
			out = append(out, r.fields[key])
		}
		if step.FollowUp != nil {
			out = append(out, r.fields[step.FollowUp.Key])
		}
	}
	return out
}

// ClearIdentityOnSubmit reports whether final submission forgets the cached
// draft identity.
func (r *Registry) ClearIdentityOnSubmit() bool { return r.clearIdentityOnSubmit }
