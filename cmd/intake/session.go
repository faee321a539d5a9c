package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/goliatone/go-intake/pkg/flow"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
	"github.com/goliatone/go-intake/pkg/report"
)

// sessionOptions are the knobs shared by the interactive commands.
type sessionOptions struct {
	backend     string
	holdOnError bool
	review      bool
}

type sessionResult struct {
	session *flow.Session
	outcome flow.Outcome
}

// runSession resumes or starts a draft for reg and prompts until the
// applicant submits or aborts.
func runSession(ctx context.Context, out io.Writer, reg *model.Registry, renderer *report.Renderer, opts sessionOptions) (sessionResult, error) {
	backend, closeBackend, err := openBackend(ctx, opts.backend)
	if err != nil {
		return sessionResult{}, err
	}
	defer closeBackend()

	identities, closeIdentities, err := openIdentityStore(reg.Name())
	if err != nil {
		return sessionResult{}, err
	}
	defer closeIdentities()

	newManager := func() *draft.Manager {
		return draft.NewManager(backend, identities,
			draft.WithLogger(logger),
			draft.WithClearOnSubmit(reg.ClearIdentityOnSubmit()),
		)
	}
	manager := newManager()

	state, resumed, err := manager.LoadIdentity(ctx)
	if err != nil {
		return sessionResult{}, fmt.Errorf("load saved draft: %w", err)
	}
	if resumed && manager.Complete() {
		if summary, err := renderer.Review(reg, state, true); err == nil {
			fmt.Fprint(out, summary)
		}
		fmt.Fprintln(out, "That application was already submitted. Starting a new one.")
		if err := identities.Clear(ctx); err != nil {
			return sessionResult{}, fmt.Errorf("clear submitted draft: %w", err)
		}
		manager = newManager()
		state, resumed = model.FormState{}, false
	}

	policy := flow.ContinueOnSaveError
	if opts.holdOnError {
		policy = flow.HoldOnSaveError
	}
	session := flow.New(reg, manager, flow.WithLogger(logger), flow.WithSavePolicy(policy))
	if resumed {
		if _, err := session.Resume(state); err != nil {
			return sessionResult{}, fmt.Errorf("resume draft: %w", err)
		}
		fmt.Fprintln(out, "Resuming your saved application.")
	}

	runnerOpts := []tui.Option{tui.WithPromptDriver(tui.NewSurveyDriver(out))}
	if opts.review {
		runnerOpts = append(runnerOpts, tui.WithReview(renderer))
	}
	outcome, err := tui.New(runnerOpts...).Run(ctx, session)
	return sessionResult{session: session, outcome: outcome}, err
}
