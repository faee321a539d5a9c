package catalog_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-intake/pkg/catalog"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/scoring"
	"github.com/google/go-cmp/cmp"
)

func TestDefault_Flows(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if diff := cmp.Diff([]string{"agent", "full", "quiz"}, cat.FlowNames()); diff != "" {
		t.Fatalf("flow names mismatch (-want +got):\n%s", diff)
	}

	full, err := cat.Flow("full")
	if err != nil {
		t.Fatalf("Flow(full): %v", err)
	}
	if full.ClearIdentityOnSubmit() {
		t.Fatalf("full flow must keep the identity on submit")
	}
	last, _ := full.Step(full.TerminalIndex())
	if last.Kind != model.KindTerminalConsent {
		t.Fatalf("last step kind = %s", last.Kind)
	}

	for _, key := range []string{"businessStreet", "businessZip", "ownerCity", "existingBalance", "ownershipPercentage"} {
		if _, err := full.Field(key); err != nil {
			t.Fatalf("full flow missing field %q: %v", key, err)
		}
	}
	zip, _ := full.Field("businessZip")
	if zip.Mask != model.MaskPostalCode || zip.Part != model.AddressZip {
		t.Fatalf("unexpected zip field %+v", zip)
	}

	agent, err := cat.Flow("agent")
	if err != nil {
		t.Fatalf("Flow(agent): %v", err)
	}
	if !agent.ClearIdentityOnSubmit() {
		t.Fatalf("agent flow must clear the identity on submit")
	}
	if agent.Len() != full.Len() {
		t.Fatalf("agent steps = %d, full steps = %d", agent.Len(), full.Len())
	}
}

func TestDefault_SkipAndFollowUpRules(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	full, _ := cat.Flow("full")

	var lender, balance model.StepDescriptor
	for _, step := range full.Steps() {
		switch step.Key {
		case "existingLender":
			lender = step
		case "hasExistingBalance":
			balance = step
		}
	}
	if lender.Visible(model.FormState{"hasExistingBalance": "No"}) {
		t.Fatalf("existingLender should be hidden when there is no balance")
	}
	if !lender.Visible(model.FormState{"hasExistingBalance": "Yes"}) {
		t.Fatalf("existingLender should be shown when there is a balance")
	}
	if !balance.FollowUp.Triggered("Yes") || balance.FollowUp.Triggered("No") {
		t.Fatalf("existingBalance follow-up trigger mismatch")
	}
}

func TestDefault_QuizFlowMatchesQuiz(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	quiz := cat.Quiz()
	if quiz == nil || quiz.Ceiling() != 100 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	reg, err := cat.Flow("quiz")
	if err != nil {
		t.Fatalf("Flow(quiz): %v", err)
	}

	for _, q := range quiz.Questions() {
		field, err := reg.Field(q.ID)
		if err != nil {
			t.Fatalf("quiz flow missing question %q: %v", q.ID, err)
		}
		step, _ := reg.Step(field.Step)
		if diff := cmp.Diff(q.Options(), step.Options); diff != "" {
			t.Fatalf("options for %s mismatch (-want +got):\n%s", q.ID, diff)
		}
		if !step.Required {
			t.Fatalf("question step %s must be required", q.ID)
		}
	}

	revenue, _ := reg.Field("revenueBracket")
	if !revenue.FollowUp {
		t.Fatalf("revenueBracket should be a follow-up field")
	}

	result := quiz.Score(scoring.AnswerSet{})
	if result.Score != 10 || result.Rating != scoring.RatingNeedsImprovement {
		t.Fatalf("floor = %d %s", result.Score, result.Rating)
	}
}

func TestFlow_Unknown(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if _, err := cat.Flow("nope"); !errors.Is(err, catalog.ErrUnknownFlow) {
		t.Fatalf("expected ErrUnknownFlow, got %v", err)
	}
}

func TestLoadFS_JSONAndYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"sets.json": {Data: []byte(`{"optionSets": {"yesNo": ["Yes", "No"]}}`)},
		"flows/mini.yaml": {Data: []byte(`
flows:
  mini:
    steps:
      - key: name
        kind: text
        required: true
      - key: agree
        kind: single-select
        optionSet: yesNo
      - key: consent
        kind: terminal-consent
`)},
		"README.md": {Data: []byte("ignored")},
	}
	cat, err := catalog.LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	reg, err := cat.Flow("mini")
	if err != nil {
		t.Fatalf("Flow: %v", err)
	}
	step, _ := reg.Step(1)
	if diff := cmp.Diff([]string{"Yes", "No"}, step.Options); diff != "" {
		t.Fatalf("option set not applied (-want +got):\n%s", diff)
	}
	if cat.Quiz() != nil {
		t.Fatalf("no quiz was defined")
	}
}

func TestLoadFS_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "empty file",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("  \n")}},
			want: "is empty",
		},
		{
			name: "duplicate flow",
			fsys: fstest.MapFS{
				"a.yaml": {Data: []byte("flows:\n  x:\n    steps: [{key: c, kind: terminal-consent}]\n")},
				"b.yaml": {Data: []byte("flows:\n  x:\n    steps: [{key: c, kind: terminal-consent}]\n")},
			},
			want: `duplicate flow "x"`,
		},
		{
			name: "unknown kind",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("flows:\n  x:\n    steps: [{key: a, kind: slider}, {key: c, kind: terminal-consent}]\n")}},
			want: "unknown step kind",
		},
		{
			name: "unknown option set",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("flows:\n  x:\n    steps: [{key: a, kind: single-select, optionSet: nope}, {key: c, kind: terminal-consent}]\n")}},
			want: `unknown option set "nope"`,
		},
		{
			name: "terminal not last",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("flows:\n  x:\n    steps: [{key: c, kind: terminal-consent}, {key: a, kind: text}]\n")}},
			want: "must be the last step",
		},
		{
			name: "extends cycle",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("flows:\n  x:\n    extends: y\n  y:\n    extends: x\n")}},
			want: "extends cycle",
		},
		{
			name: "extends unknown",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("flows:\n  x:\n    extends: ghost\n")}},
			want: `unknown flow "ghost"`,
		},
		{
			name: "question without quiz",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte("flows:\n  x:\n    steps: [{question: q1}, {key: c, kind: terminal-consent}]\n")}},
			want: `unknown quiz question "q1"`,
		},
		{
			name: "quiz ceiling drift",
			fsys: fstest.MapFS{"q.yaml": {Data: []byte("quiz:\n  ceiling: 50\n  questions:\n    - {id: a, impact: {yes: 10, no: 0}}\n")}},
			want: "ceiling is 50",
		},
		{
			name: "bad rule",
			fsys: fstest.MapFS{"a.yaml": {Data: []byte(`
flows:
  x:
    steps:
      - key: a
        kind: text
      - key: b
        kind: text
        showWhen: {key: a, when: {}}
      - key: c
        kind: terminal-consent
`)}},
			want: "rule: spec is empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.LoadFS(tt.fsys)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}
