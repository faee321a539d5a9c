// Package tui drives a flow.Session from a terminal, one prompt per step.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/goliatone/go-intake/pkg/flow"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/report"
)

// Runner prompts for each step of a session until it is submitted.
type Runner struct {
	driver PromptDriver
	theme  Theme
	review *report.Renderer
}

// New constructs a Runner with defaults (survey driver, default theme).
func New(options ...Option) *Runner {
	r := &Runner{theme: DefaultTheme}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// errBack is returned by prompts when the applicant asked to step back.
var errBack = errors.New("tui: back")

// Run prompts until the session reaches PhaseSubmitted. It returns the final
// outcome, or the first error that cannot be handled by re-prompting.
func (r *Runner) Run(ctx context.Context, session *flow.Session) (flow.Outcome, error) {
	if ctx == nil {
		return flow.Outcome{}, errors.New("tui: context is required")
	}
	if session == nil {
		return flow.Outcome{}, errors.New("tui: session is required")
	}

	var out flow.Outcome
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		var err error
		switch session.Phase() {
		case flow.PhaseSubmitted:
			out.Phase = flow.PhaseSubmitted
			return out, nil
		case flow.PhaseFollowUp:
			out, err = r.followUp(ctx, session)
		case flow.PhaseConsent:
			out, err = r.consent(ctx, session)
		default:
			out, err = r.step(ctx, session)
		}

		switch {
		case err == nil:
			r.reportSave(ctx, out)
		case errors.Is(err, errBack):
			if _, backErr := session.Back(); errors.Is(backErr, flow.ErrAtFirstStep) {
				r.info(ctx, "Already at the first question.")
			} else if backErr != nil {
				return out, backErr
			}
		case flow.IsValidation(err):
			r.showValidation(ctx, err)
		default:
			return out, err
		}
	}
}

func (r *Runner) step(ctx context.Context, session *flow.Session) (flow.Outcome, error) {
	step := session.Current()
	state := session.State()

	switch step.Kind {
	case model.KindText, model.KindEmail, model.KindTel, model.KindDate, model.KindNumber, model.KindCurrency:
		raw, err := r.text(ctx, labelOf(step.Label, step.Key), step.Help, state.Get(step.Key))
		if err != nil {
			return flow.Outcome{}, err
		}
		if _, err := session.SetValue(step.Key, raw); err != nil {
			return flow.Outcome{}, err
		}
	case model.KindSingleSelect, model.KindMultiOptionCard:
		choice, err := r.choice(ctx, labelOf(step.Label, step.Key), step.Help, step.Options, state.Get(step.Key))
		if err != nil {
			return flow.Outcome{}, err
		}
		if _, err := session.SetValue(step.Key, choice); err != nil {
			return flow.Outcome{}, err
		}
	case model.KindAddressGroup:
		if err := r.address(ctx, session, step, state); err != nil {
			return flow.Outcome{}, err
		}
	case model.KindTerminalConsent:
		return flow.Outcome{}, fmt.Errorf("tui: consent step %q reached outside the consent phase", step.Key)
	default:
		return flow.Outcome{}, fmt.Errorf("tui: unsupported step kind %q", step.Kind)
	}
	return session.Advance(ctx)
}

func (r *Runner) followUp(ctx context.Context, session *flow.Session) (flow.Outcome, error) {
	fu := session.PendingFollowUp()
	if fu == nil {
		return flow.Outcome{}, flow.ErrNoFollowUp
	}
	current := session.State().Get(fu.Key)

	var (
		raw string
		err error
	)
	switch fu.Kind {
	case model.KindSingleSelect, model.KindMultiOptionCard:
		raw, err = r.choice(ctx, labelOf(fu.Label, fu.Key), "", fu.Options, current)
	case model.KindText, model.KindEmail, model.KindTel, model.KindDate, model.KindNumber, model.KindCurrency:
		raw, err = r.text(ctx, labelOf(fu.Label, fu.Key), "", current)
	default:
		return flow.Outcome{}, fmt.Errorf("tui: unsupported follow-up kind %q", fu.Kind)
	}
	if err != nil {
		return flow.Outcome{}, err
	}
	return session.ResolveFollowUp(ctx, raw)
}

func (r *Runner) consent(ctx context.Context, session *flow.Session) (flow.Outcome, error) {
	step := session.Current()
	if r.review != nil {
		summary, err := r.review.Review(session.Registry(), session.State(), false)
		if err != nil {
			return flow.Outcome{}, err
		}
		r.info(ctx, summary)
	}

	agreed, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: labelOf(step.Label, step.Key),
		Help:    "Answer no to go back and change your answers.",
	})
	if err != nil {
		return flow.Outcome{}, err
	}
	if !agreed {
		return flow.Outcome{}, errBack
	}
	if err := session.SetConsent(true); err != nil {
		return flow.Outcome{}, err
	}

	for {
		out, err := session.Advance(ctx)
		switch {
		case err == nil:
			return out, nil
		case flow.IsValidation(err):
			r.showValidation(ctx, err)
			if _, err := session.Resume(session.State()); err != nil {
				return out, err
			}
			return out, nil
		case errors.Is(err, draft.ErrTransport):
			r.errorf(ctx, "Submission failed: %v", err)
			retry, promptErr := r.driver.Confirm(ctx, ConfirmConfig{
				Message: "Retry submission?",
				Default: true,
			})
			if promptErr != nil {
				return out, promptErr
			}
			if !retry {
				return out, fmt.Errorf("%w: %w", ErrSubmissionAbandoned, err)
			}
		default:
			return out, err
		}
	}
}

func (r *Runner) address(ctx context.Context, session *flow.Session, step model.StepDescriptor, state model.FormState) error {
	r.info(ctx, labelOf(step.Label, step.Key))
	for _, part := range model.AddressParts() {
		key := model.AddressKey(step.GroupPrefix, part)
		raw, err := r.text(ctx, addressPartLabel(part), "", state.Get(key))
		if err != nil {
			return err
		}
		if _, err := session.SetValue(key, raw); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) text(ctx context.Context, label, help, current string) (string, error) {
	hint := fmt.Sprintf("Type %s to go back.", r.theme.BackToken)
	if help != "" {
		hint = help + " " + hint
	}
	raw, err := r.driver.Input(ctx, InputConfig{Message: label, Help: hint, Default: current})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == r.theme.BackToken {
		return "", errBack
	}
	return raw, nil
}

func (r *Runner) choice(ctx context.Context, label, help string, options []string, current string) (string, error) {
	choices := append(append([]string(nil), options...), r.theme.BackLabel)
	defaultIndex := 0
	for i, option := range options {
		if strings.EqualFold(option, strings.TrimSpace(current)) {
			defaultIndex = i
			break
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Help:         help,
		Options:      choices,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return "", err
	}
	switch {
	case idx == len(options):
		return "", errBack
	case idx < 0 || idx > len(options):
		return "", fmt.Errorf("tui: selection %d out of range", idx)
	}
	return options[idx], nil
}

func (r *Runner) reportSave(ctx context.Context, out flow.Outcome) {
	if out.SaveErr != nil {
		r.errorf(ctx, "Your progress could not be saved; it will be retried on the next step.")
	}
}

func (r *Runner) showValidation(ctx context.Context, err error) {
	var verrs flow.ValidationErrors
	if !errors.As(err, &verrs) {
		r.errorf(ctx, "%v", err)
		return
	}
	seen := make(map[string]struct{}, len(verrs))
	for _, v := range verrs {
		if _, dup := seen[v.Message]; dup {
			continue
		}
		seen[v.Message] = struct{}{}
		r.errorf(ctx, "%s", v.Message)
	}
}

func (r *Runner) info(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) errorf(ctx context.Context, format string, args ...any) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func labelOf(label, key string) string {
	if strings.TrimSpace(label) != "" {
		return label
	}
	return key
}

func addressPartLabel(part model.AddressPart) string {
	switch part {
	case model.AddressStreet:
		return "Street address"
	case model.AddressUnit:
		return "Unit / suite"
	case model.AddressCity:
		return "City"
	case model.AddressState:
		return "State"
	case model.AddressZip:
		return "ZIP code"
	default:
		return string(part)
	}
}
