package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-intake/pkg/report"
	"github.com/goliatone/go-intake/pkg/scoring"
)

var (
	scoreAnswers []string
	scoreJSON    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score quiz answers without prompting",
	Long: `Scores answers given on the command line. Each --answer is id=value,
where id is a quiz question or a follow-up key. Unanswered questions get
their least favorable weight.`,
	Example: `  intake score --answer timeInBusiness=Yes --answer bankingType=business
  intake score -a monthlyRevenue=Yes -a revenueBracket='$25k-$50k' --json`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringArrayVarP(&scoreAnswers, "answer", "a", nil, "Answer as id=value (repeatable)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the result as JSON")
}

func runScore(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	quiz := cat.Quiz()
	if quiz == nil {
		return errors.New("the catalog does not define a quiz")
	}
	answers, err := parseAnswers(quiz, scoreAnswers)
	if err != nil {
		return err
	}

	result := quiz.Score(answers)
	out := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	renderer, err := report.New()
	if err != nil {
		return err
	}
	return renderer.WriteScore(out, result)
}

// parseAnswers turns id=value pairs into an answer set, routing follow-up
// keys to refinements.
func parseAnswers(quiz *scoring.Quiz, pairs []string) (scoring.AnswerSet, error) {
	values := make(map[string]string, len(pairs))
	known := make(map[string]bool)
	for _, q := range quiz.Questions() {
		known[q.ID] = true
		if q.FollowUp != nil {
			known[q.FollowUp.Key] = true
		}
	}

	var errs []error
	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		switch {
		case !ok || id == "":
			errs = append(errs, fmt.Errorf("answer %q must be id=value", pair))
		case !known[id]:
			errs = append(errs, fmt.Errorf("unknown question %q", id))
		default:
			values[id] = strings.TrimSpace(value)
		}
	}
	if len(errs) > 0 {
		return scoring.AnswerSet{}, errors.Join(errs...)
	}
	return scoring.AnswersFrom(quiz, values), nil
}
