package flow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/goliatone/go-intake/pkg/model"
	"go.uber.org/zap"
)

// Phase is the state of a Session.
type Phase int

const (
	// PhaseStep waits for the answer to the current step.
	PhaseStep Phase = iota
	// PhaseFollowUp waits for the follow-up opened by the current step.
	PhaseFollowUp
	// PhaseConsent sits on the terminal consent step.
	PhaseConsent
	// PhaseSubmitted is terminal.
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseStep:
		return "step"
	case PhaseFollowUp:
		return "follow-up"
	case PhaseConsent:
		return "consent"
	case PhaseSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Committer persists form state. *draft.Manager satisfies it.
type Committer interface {
	Commit(ctx context.Context, state model.FormState, final bool) (draft.Identity, error)
}

// SavePolicy decides what a failed non-final commit does to navigation.
type SavePolicy int

const (
	// ContinueOnSaveError advances anyway and reports the failure in
	// Outcome.SaveErr.
	ContinueOnSaveError SavePolicy = iota
	// HoldOnSaveError stays on the current step and returns the failure.
	HoldOnSaveError
)

// Outcome describes the session position after a transition.
type Outcome struct {
	Phase    Phase
	Index    int
	Identity draft.Identity
	// SaveErr carries a non-final commit failure that did not block
	// navigation under ContinueOnSaveError.
	SaveErr error
}

// Option configures a Session.
type Option func(*Session)

// WithSavePolicy sets the policy for failed non-final commits.
func WithSavePolicy(policy SavePolicy) Option {
	return func(s *Session) {
		s.policy = policy
	}
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session drives one applicant through a registry. Only one commit runs at a
// time: a transition requested while a commit is in flight fails with ErrBusy
// instead of queueing.
type Session struct {
	registry  *model.Registry
	committer Committer
	policy    SavePolicy
	logger    *zap.Logger

	inFlight atomic.Bool

	mu      sync.Mutex
	state   model.FormState
	index   int
	phase   Phase
	consent bool
}

// New starts a session on the first reachable step with empty state.
func New(registry *model.Registry, committer Committer, opts ...Option) *Session {
	s := &Session{
		registry:  registry,
		committer: committer,
		logger:    zap.NewNop(),
		state:     model.FormState{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.moveToLocked(s.nextVisibleLocked(-1))
	return s
}

// Registry returns the registry driving the session.
func (s *Session) Registry() *model.Registry { return s.registry }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Index returns the current step index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the descriptor at the current index.
func (s *Session) Current() model.StepDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, _ := s.registry.Step(s.index)
	return step
}

// PendingFollowUp returns the open follow-up, or nil outside PhaseFollowUp.
func (s *Session) PendingFollowUp() *model.FollowUp {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseFollowUp {
		return nil
	}
	step, _ := s.registry.Step(s.index)
	return step.FollowUp
}

// State returns a copy of the form state.
func (s *Session) State() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Consent reports the consent flag.
func (s *Session) Consent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consent
}

// Busy reports whether a commit is in flight.
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// SetValue normalises raw for key and stores the display form. Typing is
// allowed while a commit is in flight; the commit works on a snapshot.
func (s *Session) SetValue(key, raw string) (string, error) {
	field, err := s.registry.Field(key)
	if err != nil {
		return "", err
	}
	step, _ := s.registry.Step(field.Step)
	options := step.Options
	if field.FollowUp && step.FollowUp != nil {
		options = step.FollowUp.Options
	}
	value, err := Normalize(field, raw, options)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseSubmitted {
		return "", ErrSubmitted
	}
	s.state.Set(key, value)
	return value, nil
}

// SetConsent records the applicant's consent to submit.
func (s *Session) SetConsent(given bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseSubmitted {
		return ErrSubmitted
	}
	s.consent = given
	return nil
}

// Resume replaces the form state, typically with a hydrated draft, and moves
// to the first reachable step that does not validate. When every step
// validates the session lands on the consent step. Resume while a commit is
// in flight returns ErrBusy and leaves the session untouched.
func (s *Session) Resume(state model.FormState) (Outcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.snapshotOutcome(), ErrBusy
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state.Clone()
	s.consent = false
	terminal := s.registry.TerminalIndex()
	for i := s.nextVisibleLocked(-1); i < terminal; i = s.nextVisibleLocked(i) {
		step, _ := s.registry.Step(i)
		if errs := ValidateStep(step, s.state); len(errs) > 0 {
			s.moveToLocked(i)
			return s.outcomeLocked(), nil
		}
		if fu := step.FollowUp; fu.Triggered(s.state.Get(step.Key)) {
			if errs := ValidateFollowUp(fu, s.state.Get(fu.Key)); len(errs) > 0 {
				s.index = i
				s.phase = PhaseFollowUp
				return s.outcomeLocked(), nil
			}
		}
	}
	s.moveToLocked(terminal)
	return s.outcomeLocked(), nil
}

// Advance validates the current step and moves forward. On the consent step
// it requires consent, re-validates every reachable step and performs the
// final commit.
func (s *Session) Advance(ctx context.Context) (Outcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.snapshotOutcome(), ErrBusy
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	switch s.phase {
	case PhaseSubmitted:
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, ErrSubmitted
	case PhaseFollowUp:
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, ErrFollowUpPending
	case PhaseConsent:
		return s.submitLocked(ctx)
	}

	step, _ := s.registry.Step(s.index)
	if errs := ValidateStep(step, s.state); len(errs) > 0 {
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, errs
	}
	if fu := step.FollowUp; fu != nil {
		if fu.Triggered(s.state.Get(step.Key)) {
			s.phase = PhaseFollowUp
			out := s.outcomeLocked()
			s.mu.Unlock()
			return out, nil
		}
		s.state.Delete(fu.Key)
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	return s.commitAndMove(ctx, snapshot)
}

// ResolveFollowUp records the follow-up answer, commits and moves past the
// parent step.
func (s *Session) ResolveFollowUp(ctx context.Context, raw string) (Outcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.snapshotOutcome(), ErrBusy
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	if s.phase == PhaseSubmitted {
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, ErrSubmitted
	}
	if s.phase != PhaseFollowUp {
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, ErrNoFollowUp
	}
	step, _ := s.registry.Step(s.index)
	fu := step.FollowUp
	field, err := s.registry.Field(fu.Key)
	if err != nil {
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, err
	}
	value, err := Normalize(field, raw, fu.Options)
	if err != nil {
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, err
	}
	if errs := ValidateFollowUp(fu, value); len(errs) > 0 {
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, errs
	}
	s.state.Set(fu.Key, value)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	return s.commitAndMove(ctx, snapshot)
}

// Back moves to the previous reachable step without validating or
// committing. From an open follow-up it returns to the parent step.
func (s *Session) Back() (Outcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.snapshotOutcome(), ErrBusy
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseSubmitted:
		return s.outcomeLocked(), ErrSubmitted
	case PhaseFollowUp:
		s.phase = PhaseStep
		return s.outcomeLocked(), nil
	}
	prev := s.prevVisibleLocked(s.index)
	if prev < 0 {
		return s.outcomeLocked(), ErrAtFirstStep
	}
	s.moveToLocked(prev)
	return s.outcomeLocked(), nil
}

// submitLocked runs with s.mu held and releases it.
func (s *Session) submitLocked(ctx context.Context) (Outcome, error) {
	terminal, _ := s.registry.Step(s.index)

	var errs ValidationErrors
	if !s.consent {
		errs = append(errs, ValidationError{
			Key:     terminal.Key,
			Rule:    RuleConsent,
			Message: "Consent is required to submit the application",
		})
	}
	for i := s.nextVisibleLocked(-1); i < s.index; i = s.nextVisibleLocked(i) {
		step, _ := s.registry.Step(i)
		errs = append(errs, ValidateStep(step, s.state)...)
		if fu := step.FollowUp; fu.Triggered(s.state.Get(step.Key)) {
			errs = append(errs, ValidateFollowUp(fu, s.state.Get(fu.Key))...)
		}
	}
	if len(errs) > 0 {
		out := s.outcomeLocked()
		s.mu.Unlock()
		return out, errs
	}
	snapshot := s.submissionStateLocked()
	s.mu.Unlock()

	id, err := s.committer.Commit(ctx, snapshot, true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Error("final submission failed", zap.String("flow", s.registry.Name()), zap.Error(err))
		out := s.outcomeLocked()
		out.Identity = id
		return out, err
	}
	s.phase = PhaseSubmitted
	out := s.outcomeLocked()
	out.Identity = id
	return out, nil
}

// submissionStateLocked drops values of steps hidden by their conditions and
// of follow-ups whose trigger no longer matches.
func (s *Session) submissionStateLocked() model.FormState {
	snapshot := s.state.Clone()
	for _, step := range s.registry.Steps() {
		if !step.Visible(s.state) {
			for _, key := range step.StateKeys() {
				snapshot.Delete(key)
			}
			if step.FollowUp != nil {
				snapshot.Delete(step.FollowUp.Key)
			}
			continue
		}
		if fu := step.FollowUp; fu != nil && !fu.Triggered(s.state.Get(step.Key)) {
			snapshot.Delete(fu.Key)
		}
	}
	return snapshot
}

func (s *Session) commitAndMove(ctx context.Context, snapshot model.FormState) (Outcome, error) {
	id, err := s.committer.Commit(ctx, snapshot, false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("draft save failed",
			zap.String("flow", s.registry.Name()),
			zap.Int("step", s.index),
			zap.Error(err),
		)
		if s.policy == HoldOnSaveError {
			out := s.outcomeLocked()
			out.Identity = id
			return out, err
		}
	}
	s.moveToLocked(s.nextVisibleLocked(s.index))
	out := s.outcomeLocked()
	out.Identity = id
	out.SaveErr = err
	return out, nil
}

func (s *Session) moveToLocked(index int) {
	s.index = index
	if index == s.registry.TerminalIndex() {
		s.phase = PhaseConsent
		return
	}
	s.phase = PhaseStep
}

// nextVisibleLocked returns the first reachable index after from. The
// terminal step is always reachable.
func (s *Session) nextVisibleLocked(from int) int {
	for i := from + 1; i < s.registry.Len(); i++ {
		step, _ := s.registry.Step(i)
		if step.Visible(s.state) {
			return i
		}
	}
	return s.registry.TerminalIndex()
}

func (s *Session) prevVisibleLocked(from int) int {
	for i := from - 1; i >= 0; i-- {
		step, _ := s.registry.Step(i)
		if step.Visible(s.state) {
			return i
		}
	}
	return -1
}

func (s *Session) outcomeLocked() Outcome {
	return Outcome{Phase: s.phase, Index: s.index}
}

func (s *Session) snapshotOutcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcomeLocked()
}
