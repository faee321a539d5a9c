package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/pkg/catalog"
	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/goliatone/go-intake/pkg/draft/redisstore"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/scoring"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	scoreAnswers = nil
	scoreJSON = false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestScoreCommand_Text(t *testing.T) {
	out, err := runCLI(t, "score",
		"-a", "timeInBusiness=Yes",
		"-a", "monthlyRevenue=Yes",
		"-a", "revenueBracket=$25k-$50k",
		"-a", "creditScore=Yes",
		"-a", "existingPositions=0",
		"-a", "bankingType=business",
		"-a", "taxLiens=Yes",
		"-a", "bankruptcy=Yes",
	)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	for _, want := range []string{
		"Fundability score: 100/100 (100%)",
		"Rating: Excellent",
		"Revenue above $10k/month ($25k-$50k)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestScoreCommand_JSONFloor(t *testing.T) {
	out, err := runCLI(t, "score", "--json")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var result scoring.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if result.Score != 10 || result.Percentage != 10 || result.Rating != scoring.RatingNeedsImprovement {
		t.Fatalf("unexpected floor result %+v", result)
	}
}

func TestScoreCommand_RejectsUnknownQuestion(t *testing.T) {
	if _, err := runCLI(t, "score", "-a", "favoriteColor=blue"); err == nil || !strings.Contains(err.Error(), `unknown question "favoriteColor"`) {
		t.Fatalf("expected unknown question error, got %v", err)
	}
}

func TestParseAnswers(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	quiz := cat.Quiz()

	got, err := parseAnswers(quiz, []string{"bankingType= personal ", "revenueBracket=$100k+"})
	if err != nil {
		t.Fatalf("parseAnswers: %v", err)
	}
	want := scoring.AnswerSet{
		Answers:     map[string]string{"bankingType": "personal"},
		Refinements: map[string]string{"revenueBracket": "$100k+"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}

	_, err = parseAnswers(quiz, []string{"noequals", "=Yes"})
	if err == nil {
		t.Fatalf("expected errors for malformed pairs")
	}
	for _, want := range []string{`"noequals" must be id=value`, `"=Yes" must be id=value`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestOpenBackend(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.Config{}
	ctx := context.Background()

	backend, closeFn, err := openBackend(ctx, "memory")
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	defer closeFn()
	if _, ok := backend.(*draft.MemoryBackend); !ok {
		t.Fatalf("backend = %T", backend)
	}

	if _, _, err := openBackend(ctx, "http"); err == nil {
		t.Fatalf("http backend without an API URL should fail")
	}
	if _, _, err := openBackend(ctx, "carrier-pigeon"); err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}

	cfg.APIURL = "http://localhost:8080/api/v1"
	backend, closeFn, err = openBackend(ctx, "")
	if err != nil {
		t.Fatalf("auto backend: %v", err)
	}
	defer closeFn()
	if _, ok := backend.(*draft.MemoryBackend); ok {
		t.Fatalf("auto backend should use the API when configured")
	}
}

func TestOpenIdentityStore_FileByDefault(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	cfg = config.Config{IdentityFile: filepath.Join(dir, "draft.json")}

	ids, closeFn, err := openIdentityStore("quiz")
	if err != nil {
		t.Fatalf("openIdentityStore: %v", err)
	}
	defer closeFn()
	fs, ok := ids.(*draft.FileStore)
	if !ok {
		t.Fatalf("store = %T", ids)
	}
	if diff := cmp.Diff(filepath.Join(dir, "draft-quiz.json"), fs.Path()); diff != "" {
		t.Fatalf("identity file mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenIdentityStore_UnfinishedQuizNotResumedByFullFlow(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.Config{IdentityFile: filepath.Join(t.TempDir(), "draft.json")}
	assertFlowsIsolated(t)
}

func TestOpenIdentityStore_RedisKeyPerFlow(t *testing.T) {
	logger = zap.NewNop()
	mr := miniredis.RunT(t)
	cfg = config.Config{RedisURL: "redis://" + mr.Addr(), Workstation: "desk-1"}

	ids, closeFn, err := openIdentityStore("quiz")
	if err != nil {
		t.Fatalf("openIdentityStore: %v", err)
	}
	defer closeFn()
	rs, ok := ids.(*redisstore.Store)
	if !ok {
		t.Fatalf("store = %T", ids)
	}
	if diff := cmp.Diff("intake:draft:desk-1:quiz", rs.Key()); diff != "" {
		t.Fatalf("redis key mismatch (-want +got):\n%s", diff)
	}

	assertFlowsIsolated(t)
}

// assertFlowsIsolated leaves a quiz draft unfinished, then checks the full
// flow starts fresh while the quiz still resumes.
func assertFlowsIsolated(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	backend := draft.NewMemoryBackend()

	quizIDs, closeQuiz, err := openIdentityStore("quiz")
	if err != nil {
		t.Fatalf("openIdentityStore(quiz): %v", err)
	}
	defer closeQuiz()
	quizState := model.FormState{"timeInBusiness": "Yes", "creditScore": "Yes"}
	if _, err := draft.NewManager(backend, quizIDs).Commit(ctx, quizState, false); err != nil {
		t.Fatalf("Commit quiz: %v", err)
	}

	fullIDs, closeFull, err := openIdentityStore("full")
	if err != nil {
		t.Fatalf("openIdentityStore(full): %v", err)
	}
	defer closeFull()
	state, resumed, err := draft.NewManager(backend, fullIDs).LoadIdentity(ctx)
	if err != nil {
		t.Fatalf("LoadIdentity full: %v", err)
	}
	if resumed || len(state) != 0 {
		t.Fatalf("full flow resumed quiz draft: resumed=%v state=%v", resumed, state)
	}

	quizAgain, closeAgain, err := openIdentityStore("quiz")
	if err != nil {
		t.Fatalf("reopen quiz store: %v", err)
	}
	defer closeAgain()
	state, resumed, err = draft.NewManager(backend, quizAgain).LoadIdentity(ctx)
	if err != nil {
		t.Fatalf("LoadIdentity quiz: %v", err)
	}
	if !resumed {
		t.Fatalf("quiz draft was not resumed")
	}
	if diff := cmp.Diff("Yes", state.Get("creditScore")); diff != "" {
		t.Fatalf("resumed creditScore mismatch (-want +got):\n%s", diff)
	}
}
