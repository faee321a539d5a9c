package scoring

import (
	"math"
	"strings"
)

// Status classifies a factor's contribution.
type Status string

const (
	StatusPositive Status = "positive"
	StatusNeutral  Status = "neutral"
	StatusNegative Status = "negative"
)

// Ratings, best first.
const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingFair             = "Fair"
	RatingNeedsImprovement = "Needs Improvement"
)

// AnswerSet maps question ids to answers. Refinements hold follow-up values
// keyed by follow-up key.
type AnswerSet struct {
	Answers     map[string]string `json:"answers"`
	Refinements map[string]string `json:"refinements,omitempty"`
}

// AnswersFrom splits flat form values into answers for q's questions and
// refinements for their follow-ups. Other keys are ignored.
func AnswersFrom(q *Quiz, values map[string]string) AnswerSet {
	set := AnswerSet{Answers: map[string]string{}, Refinements: map[string]string{}}
	for _, question := range q.questions {
		if v, ok := values[question.ID]; ok {
			set.Answers[question.ID] = v
		}
		if fu := question.FollowUp; fu != nil {
			if v, ok := values[fu.Key]; ok {
				set.Refinements[fu.Key] = v
			}
		}
	}
	return set
}

// Factor explains one question's contribution.
type Factor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Answer      string `json:"answer,omitempty"`
	Points      int    `json:"points"`
	Status      Status `json:"status"`
	Description string `json:"description"`
}

// Result is the output of Score.
type Result struct {
	Score      int      `json:"score"`
	MaxScore   int      `json:"maxScore"`
	Percentage int      `json:"percentage"`
	Rating     string   `json:"rating"`
	Factors    []Factor `json:"factors"`
}

// Score walks the questions in order and sums the awarded points. An
// unanswered or unrecognised answer is scored as conservatively as possible:
// the "No" weight for yes/no questions and the lowest tier otherwise.
func (q *Quiz) Score(answers AnswerSet) Result {
	result := Result{MaxScore: q.ceiling, Factors: make([]Factor, 0, len(q.questions))}
	for _, question := range q.questions {
		answer := strings.TrimSpace(answers.Answers[question.ID])
		factor := scoreQuestion(question, answer)
		if fu := question.FollowUp; fu != nil && fu.When.Match(answer) {
			if refinement := strings.TrimSpace(answers.Refinements[fu.Key]); refinement != "" {
				factor.Description += " (" + refinement + ")"
			}
		}
		result.Score += factor.Points
		result.Factors = append(result.Factors, factor)
	}
	result.Percentage = Percentage(result.Score, result.MaxScore)
	result.Rating = RatingFor(result.Percentage)
	return result
}

func scoreQuestion(q Question, answer string) Factor {
	factor := Factor{ID: q.ID, Name: q.Name, Answer: answer}
	if q.Tiered() {
		tier, ok := lookupTier(q.Tiers, answer)
		if !ok {
			tier = lowestTier(q.Tiers)
		}
		factor.Points = tier.Points
		switch {
		case tier.Points == q.MaxPoints():
			factor.Status = StatusPositive
		case tier.Points == q.MinPoints():
			factor.Status = StatusNegative
		default:
			factor.Status = StatusNeutral
		}
		factor.Description = tier.Description
		return factor
	}

	chosen, other := q.Impact.No, q.Impact.Yes
	if strings.EqualFold(answer, AnswerYes) {
		chosen, other = q.Impact.Yes, q.Impact.No
	}
	factor.Points = chosen
	if chosen >= other {
		factor.Status = StatusPositive
		factor.Description = q.Positive
	} else {
		factor.Status = StatusNegative
		factor.Description = q.Negative
	}
	return factor
}

func lookupTier(tiers []Tier, answer string) (Tier, bool) {
	for _, t := range tiers {
		if strings.EqualFold(strings.TrimSpace(t.Answer), answer) {
			return t, true
		}
	}
	return Tier{}, false
}

func lowestTier(tiers []Tier) Tier {
	lowest := tiers[0]
	for _, t := range tiers[1:] {
		if t.Points < lowest.Points {
			lowest = t
		}
	}
	return lowest
}

// Percentage returns round(score / maxScore * 100), or 0 for a zero maximum.
func Percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}

// RatingFor maps a percentage to its rating. Boundaries are inclusive.
func RatingFor(percentage int) string {
	switch {
	case percentage >= 80:
		return RatingExcellent
	case percentage >= 60:
		return RatingGood
	case percentage >= 40:
		return RatingFair
	default:
		return RatingNeedsImprovement
	}
}
