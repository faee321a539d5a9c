package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/scoring"
)

type builder struct {
	optionSets map[string][]string
	flows      map[string]sourced[flowFile]
	questions  map[string]scoring.Question
}

func (b *builder) buildQuiz(file quizFile, source string) (*scoring.Quiz, error) {
	questions := make([]scoring.Question, 0, len(file.Questions))
	var errs []error
	for _, qf := range file.Questions {
		q := scoring.Question{
			ID:       strings.TrimSpace(qf.ID),
			Name:     qf.Name,
			Prompt:   qf.Prompt,
			Impact:   qf.Impact,
			Tiers:    qf.Tiers,
			Positive: qf.Positive,
			Negative: qf.Negative,
		}
		if fu := qf.FollowUp; fu != nil {
			when, err := fu.When.Build()
			if err != nil {
				errs = append(errs, fmt.Errorf("catalog: %s: question %q follow-up: %w", source, q.ID, err))
				continue
			}
			options, err := b.options(fu.Options, fu.OptionSet)
			if err != nil {
				errs = append(errs, fmt.Errorf("catalog: %s: question %q follow-up: %w", source, q.ID, err))
				continue
			}
			q.FollowUp = &scoring.FollowUp{
				Key:     strings.TrimSpace(fu.Key),
				Prompt:  firstNonEmpty(fu.Prompt, fu.Label),
				Options: options,
				When:    when,
			}
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	quiz, err := scoring.NewQuiz(file.Ceiling, questions)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", source, err)
	}
	for _, q := range quiz.Questions() {
		b.questions[q.ID] = q
	}
	return quiz, nil
}

func (b *builder) buildFlow(name string) (*model.Registry, error) {
	flow, chain, err := b.resolve(name)
	if err != nil {
		return nil, err
	}

	steps := make([]model.StepDescriptor, 0, len(flow.Steps))
	var errs []error
	for i, sf := range flow.Steps {
		step, err := b.step(sf)
		if err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i, err))
			continue
		}
		steps = append(steps, step)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog: flow %q (%s): %w", name, chain, errors.Join(errs...))
	}

	var opts []model.RegistryOption
	if flow.ClearIdentityOnSubmit != nil {
		opts = append(opts, model.WithClearIdentityOnSubmit(*flow.ClearIdentityOnSubmit))
	}
	reg, err := model.NewRegistry(name, steps, opts...)
	if err != nil {
		return nil, fmt.Errorf("catalog: flow %q (%s): %w", name, chain, err)
	}
	return reg, nil
}

// resolve follows the extends chain of name. A child inherits its parent's
// steps unless it declares its own, and inherits clearIdentityOnSubmit unless
// it sets it.
func (b *builder) resolve(name string) (flowFile, string, error) {
	var chain []string
	visited := map[string]struct{}{}
	current := name
	var resolved flowFile
	first := true
	for {
		entry, ok := b.flows[current]
		if !ok {
			return flowFile{}, "", fmt.Errorf("catalog: flow %q extends unknown flow %q", name, current)
		}
		if _, loop := visited[current]; loop {
			return flowFile{}, "", fmt.Errorf("catalog: flow %q has an extends cycle through %q", name, current)
		}
		visited[current] = struct{}{}
		chain = append(chain, entry.source)

		if first {
			resolved = entry.value
			first = false
		} else {
			if len(resolved.Steps) == 0 {
				resolved.Steps = entry.value.Steps
			}
			if resolved.ClearIdentityOnSubmit == nil {
				resolved.ClearIdentityOnSubmit = entry.value.ClearIdentityOnSubmit
			}
		}

		parent := strings.TrimSpace(entry.value.Extends)
		if parent == "" {
			break
		}
		current = parent
	}
	return resolved, strings.Join(chain, " <- "), nil
}

func (b *builder) step(sf stepFile) (model.StepDescriptor, error) {
	if id := strings.TrimSpace(sf.Question); id != "" {
		return b.questionStep(id, sf)
	}

	kind, err := model.ParseStepKind(sf.Kind)
	if err != nil {
		return model.StepDescriptor{}, err
	}
	mask, err := model.ParseMask(sf.Mask)
	if err != nil {
		return model.StepDescriptor{}, err
	}
	options, err := b.options(sf.Options, sf.OptionSet)
	if err != nil {
		return model.StepDescriptor{}, err
	}

	step := model.StepDescriptor{
		Key:               strings.TrimSpace(sf.Key),
		Kind:              kind,
		Label:             sf.Label,
		Help:              sf.Help,
		Required:          sf.Required,
		Mask:              mask,
		Options:           options,
		GroupPrefix:       strings.TrimSpace(sf.GroupPrefix),
		ExplicitSelection: sf.ExplicitSelection,
		Max:               sf.Max,
	}
	if sf.FollowUp != nil {
		fu, err := b.followUp(*sf.FollowUp)
		if err != nil {
			return model.StepDescriptor{}, fmt.Errorf("%s: follow-up: %w", step.Key, err)
		}
		step.FollowUp = fu
	}
	if sf.ShowWhen != nil {
		when, err := sf.ShowWhen.When.Build()
		if err != nil {
			return model.StepDescriptor{}, fmt.Errorf("%s: showWhen: %w", step.Key, err)
		}
		step.ShowWhen = &model.Condition{Key: strings.TrimSpace(sf.ShowWhen.Key), When: when}
	}
	return step, nil
}

// questionStep expands a quiz question reference into a required select
// step carrying the question's follow-up.
func (b *builder) questionStep(id string, sf stepFile) (model.StepDescriptor, error) {
	q, ok := b.questions[id]
	if !ok {
		return model.StepDescriptor{}, fmt.Errorf("unknown quiz question %q", id)
	}
	kind := model.KindSingleSelect
	if q.Tiered() {
		kind = model.KindMultiOptionCard
	}
	step := model.StepDescriptor{
		Key:      q.ID,
		Kind:     kind,
		Label:    firstNonEmpty(sf.Label, q.Prompt, q.Name),
		Help:     sf.Help,
		Required: true,
		Options:  q.Options(),
	}
	if fu := q.FollowUp; fu != nil {
		step.FollowUp = &model.FollowUp{
			Key:      fu.Key,
			Kind:     model.KindSingleSelect,
			Label:    fu.Prompt,
			Options:  append([]string(nil), fu.Options...),
			Required: true,
			When:     fu.When,
		}
	}
	return step, nil
}

func (b *builder) followUp(ff followUpFile) (*model.FollowUp, error) {
	kind, err := model.ParseStepKind(ff.Kind)
	if err != nil {
		return nil, err
	}
	mask, err := model.ParseMask(ff.Mask)
	if err != nil {
		return nil, err
	}
	options, err := b.options(ff.Options, ff.OptionSet)
	if err != nil {
		return nil, err
	}
	when, err := ff.When.Build()
	if err != nil {
		return nil, err
	}
	return &model.FollowUp{
		Key:      strings.TrimSpace(ff.Key),
		Kind:     kind,
		Label:    firstNonEmpty(ff.Label, ff.Prompt),
		Mask:     mask,
		Options:  options,
		Required: ff.Required,
		When:     when,
	}, nil
}

func (b *builder) options(inline []string, set string) ([]string, error) {
	set = strings.TrimSpace(set)
	if set == "" {
		return append([]string(nil), inline...), nil
	}
	if len(inline) > 0 {
		return nil, fmt.Errorf("options and optionSet %q are mutually exclusive", set)
	}
	values, ok := b.optionSets[set]
	if !ok {
		return nil, fmt.Errorf("unknown option set %q", set)
	}
	return append([]string(nil), values...), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
