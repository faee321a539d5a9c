package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-intake/pkg/renderers/tui"
	"github.com/goliatone/go-intake/pkg/report"
	"github.com/goliatone/go-intake/pkg/scoring"
)

var (
	quizFlow    string
	quizBackend string
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take the fundability quiz and see your score",
	Args:  cobra.NoArgs,
	RunE:  runQuiz,
}

func init() {
	quizCmd.Flags().StringVarP(&quizFlow, "flow", "f", "quiz", "Quiz flow to run")
	quizCmd.Flags().StringVar(&quizBackend, "backend", backendAuto, "Draft backend: auto, memory, http or sql")
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	out := cmd.OutOrStdout()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	quiz := cat.Quiz()
	if quiz == nil {
		return errors.New("the catalog does not define a quiz")
	}
	reg, err := cat.Flow(quizFlow)
	if err != nil {
		return err
	}
	renderer, err := report.New()
	if err != nil {
		return err
	}

	res, err := runSession(ctx, out, reg, renderer, sessionOptions{backend: quizBackend})
	switch {
	case errors.Is(err, tui.ErrAborted):
		fmt.Fprintln(out, "Stopped. Your answers are saved; run the command again to resume.")
		return nil
	case err != nil:
		return err
	}

	result := quiz.Score(scoring.AnswersFrom(quiz, res.session.State()))
	return renderer.WriteScore(out, result)
}
