package report

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/rule"
	"github.com/goliatone/go-intake/pkg/scoring"
)

func TestScore_RendersFactors(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result := scoring.Result{
		Score: 45, MaxScore: 100, Percentage: 45, Rating: scoring.RatingFair,
		Factors: []scoring.Factor{
			{ID: "monthlyRevenue", Name: "Monthly revenue", Points: 20, Status: scoring.StatusPositive, Description: "Revenue above $10k/month ($50k+)"},
			{ID: "bankingType", Name: "Banking", Points: 5, Status: scoring.StatusNeutral, Description: "Personal account only"},
			{ID: "taxLiens", Name: "Tax liens", Points: 0, Status: scoring.StatusNegative, Description: "Open tax liens"},
		},
	}

	out, err := r.Score(result)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	var buf bytes.Buffer
	if err := r.WriteScore(&buf, result); err != nil {
		t.Fatalf("WriteScore: %v", err)
	}
	if buf.String() != out {
		t.Fatalf("writer output differs from returned string")
	}
	for _, want := range []string{
		"Fundability score: 45/100 (45%)",
		"Rating: Fair",
		"[+] Monthly revenue: Revenue above $10k/month ($50k+) (20 pts)",
		"[~] Banking: Personal account only (5 pts)",
		"[-] Tax liens: Open tax liens (0 pts)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\n\n") {
		t.Fatalf("report contains blank lines:\n%s", out)
	}
}

func TestReview_VisibleAnswersAndRedaction(t *testing.T) {
	reg, err := model.NewRegistry("mini", []model.StepDescriptor{
		{Key: "ownerName", Kind: model.KindText, Label: "Owner name", Required: true},
		{Key: "ownerSsn", Kind: model.KindText, Label: "SSN", Mask: model.MaskSSN},
		{Key: "hasBalance", Kind: model.KindSingleSelect, Label: "Existing balance?", Options: []string{"Yes", "No"},
			FollowUp: &model.FollowUp{Key: "balance", Kind: model.KindCurrency, Label: "Balance", Mask: model.MaskCurrency, When: rule.Equals("Yes")}},
		{Key: "lender", Kind: model.KindText, Label: "Lender",
			ShowWhen: &model.Condition{Key: "hasBalance", When: rule.Equals("Yes")}},
		{Key: "business", Kind: model.KindAddressGroup, Label: "Business address", GroupPrefix: "business"},
		{Key: "website", Kind: model.KindText, Label: "Website"},
		{Key: "consent", Kind: model.KindTerminalConsent, Label: "I agree"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	state := model.FormState{
		"ownerName":      "Ada O'Brien",
		"ownerSsn":       "123-45-6789",
		"hasBalance":     "No",
		"balance":        "$5,000",
		"lender":         "Acme Capital",
		"businessStreet": "1 Main St",
		"businessUnit":   "Suite 4",
		"businessCity":   "Austin",
		"businessState":  "TX",
		"businessZip":    "78701",
	}

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Review(reg, state, false)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	for _, want := range []string{
		"Application review: mini",
		"Owner name: Ada O'Brien",
		"SSN: ***-**-6789",
		"Existing balance?: No",
		"Business address: 1 Main St Suite 4, Austin, TX 78701",
		"Website: (not provided)",
		"Status: draft",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("review missing %q:\n%s", want, out)
		}
	}
	for _, hidden := range []string{"Lender", "Balance:", "123-45", "I agree"} {
		if strings.Contains(out, hidden) {
			t.Fatalf("review should not contain %q:\n%s", hidden, out)
		}
	}

	state.Set("hasBalance", "Yes")
	out, err = r.Review(reg, state, true)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	for _, want := range []string{"Balance: $5,000", "Lender: Acme Capital", "Status: submitted"} {
		if !strings.Contains(out, want) {
			t.Fatalf("review missing %q:\n%s", want, out)
		}
	}

	var buf bytes.Buffer
	if err := r.WriteReview(&buf, reg, state, true); err != nil {
		t.Fatalf("WriteReview: %v", err)
	}
	if buf.String() != out {
		t.Fatalf("WriteReview output differs from Review")
	}
}

func TestNew_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"score.tpl": {Data: []byte("{{ rating }}={{ score }}")},
	}
	r, err := New(WithFS(files))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Score(scoring.Result{Score: 90, Rating: scoring.RatingExcellent})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if out != "Excellent=90\n" {
		t.Fatalf("out = %q", out)
	}
	if _, err := r.Review(nil, nil, false); err == nil {
		t.Fatalf("expected error for nil registry")
	}
	var buf bytes.Buffer
	if err := r.WriteReview(&buf, nil, nil, false); err == nil || buf.Len() != 0 {
		t.Fatalf("WriteReview with nil registry: err=%v wrote %q", err, buf.String())
	}
}

func TestRedactShortValues(t *testing.T) {
	if got := lastDigits("12", 4); got != "**12" {
		t.Fatalf("lastDigits = %q", got)
	}
}
