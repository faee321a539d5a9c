package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/renderers/tui"
	"github.com/goliatone/go-intake/pkg/report"
)

var (
	applyFlow     string
	applyBackend  string
	applyHold     bool
	applyNoReview bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Fill in or resume an application",
	Long: `Prompts for each step of an application flow. A draft is saved after
every step; running the command again resumes the saved draft.

Flows:
  full   the long-form application
  agent  the same steps for a shared terminal; the saved identity is
         cleared after submission so the next applicant starts fresh`,
	Example: `  intake apply
  intake apply --flow agent --backend http`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyFlow, "flow", "f", "full", "Application flow to run")
	applyCmd.Flags().StringVar(&applyBackend, "backend", backendAuto, "Draft backend: auto, memory, http or sql")
	applyCmd.Flags().BoolVar(&applyHold, "hold-on-save-error", false, "Stay on a step when its draft cannot be saved")
	applyCmd.Flags().BoolVar(&applyNoReview, "no-review", false, "Skip the answer review before consent")
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	out := cmd.OutOrStdout()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	reg, err := cat.Flow(applyFlow)
	if err != nil {
		return err
	}
	renderer, err := report.New()
	if err != nil {
		return err
	}

	logger.Info("starting application", zap.String("flow", reg.Name()))
	res, err := runSession(ctx, out, reg, renderer, sessionOptions{
		backend:     applyBackend,
		holdOnError: applyHold,
		review:      !applyNoReview,
	})
	switch {
	case errors.Is(err, tui.ErrAborted):
		fmt.Fprintln(out, "Stopped. Your progress is saved; run the command again to resume.")
		return nil
	case err != nil:
		return err
	}

	if summary, err := renderer.Review(reg, res.session.State(), true); err == nil {
		fmt.Fprint(out, summary)
	}
	fmt.Fprintf(out, "Application submitted. Reference: %s\n", res.outcome.Identity)
	return nil
}
