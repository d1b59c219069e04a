package explainer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gamnamu1/python-code-explainer/internal/apperror"
	"github.com/gamnamu1/python-code-explainer/internal/llm"
	"github.com/gamnamu1/python-code-explainer/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeAnalysisRepo is an in-memory repository.AnalysisRepository. A plain
// fake (no mock framework) keeps the tests readable: what you see is what
// the fake does.
type fakeAnalysisRepo struct {
	analyses []model.CodeAnalysis
	nextID   int64
	saveErr  error
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{nextID: 1}
}

func (f *fakeAnalysisRepo) SaveAnalysis(ctx context.Context, analysis *model.CodeAnalysis) (*model.CodeAnalysis, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	saved := *analysis
	saved.ID = f.nextID
	saved.CreatedAt = time.Now()
	f.nextID++
	f.analyses = append(f.analyses, saved)
	return &saved, nil
}

func (f *fakeAnalysisRepo) ListByUser(ctx context.Context, userID int64) ([]model.CodeAnalysis, error) {
	out := []model.CodeAnalysis{}
	for _, a := range f.analyses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) GetAnalysisByID(ctx context.Context, id int64) (*model.CodeAnalysis, error) {
	for i := range f.analyses {
		if f.analyses[i].ID == id {
			return &f.analyses[i], nil
		}
	}
	return nil, apperror.NotFound("analysis", id)
}

// fakeCompleter scripts completion responses. The answer is keyed off the
// user prompt so the two concurrent calls can be told apart; failOn makes a
// specific prompt fail to exercise all-or-nothing persistence.
type fakeCompleter struct {
	calls  atomic.Int32
	failOn string // substring of the user prompt that should fail
}

func textCompletion(text string) *llm.ChatCompletion {
	var choice llm.Choice
	choice.Message.Role = "assistant"
	// round-trip through the real unmarshaller so Content carries a JSON string
	data, _ := json.Marshal(text)
	choice.Message.Content.UnmarshalJSON(data)
	return &llm.ChatCompletion{Choices: []llm.Choice{choice}}
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, messages []llm.Message) (*llm.ChatCompletion, error) {
	f.calls.Add(1)
	userPrompt := messages[len(messages)-1].Content
	if f.failOn != "" && strings.Contains(userPrompt, f.failOn) {
		return nil, errors.New("completion endpoint returned status 500")
	}
	if strings.Contains(userPrompt, "초등학교") {
		return textCompletion("elementary text"), nil
	}
	return textCompletion("college text"), nil
}

func newTestService(repo *fakeAnalysisRepo, completer Completer) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, completer, logger)
}

// =========================================================================
// ANALYZE TESTS
// =========================================================================

func TestAnalyze(t *testing.T) {
	repo := newFakeAnalysisRepo()
	completer := &fakeCompleter{}
	svc := newTestService(repo, completer)

	code := "import pandas as pd\npd.read_excel('around.xlsx')\n"
	analysis, err := svc.Analyze(context.Background(), 7, code, "around.py")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// The code is persisted byte-for-byte, including trailing newline.
	if analysis.Code != code {
		t.Errorf("Code = %q, want input verbatim", analysis.Code)
	}
	if analysis.UserID != 7 {
		t.Errorf("UserID = %d, want 7", analysis.UserID)
	}
	if analysis.FileName != "around.py" {
		t.Errorf("FileName = %q, want %q", analysis.FileName, "around.py")
	}
	if analysis.ElementaryExplanation != "elementary text" {
		t.Errorf("ElementaryExplanation = %q", analysis.ElementaryExplanation)
	}
	if analysis.CollegeExplanation != "college text" {
		t.Errorf("CollegeExplanation = %q", analysis.CollegeExplanation)
	}

	if got := completer.calls.Load(); got != 2 {
		t.Errorf("completion calls = %d, want exactly 2 (one per level)", got)
	}
	if len(repo.analyses) != 1 {
		t.Errorf("persisted rows = %d, want exactly 1", len(repo.analyses))
	}
}

func TestAnalyzeEmptyCode(t *testing.T) {
	repo := newFakeAnalysisRepo()
	completer := &fakeCompleter{}
	svc := newTestService(repo, completer)

	for _, code := range []string{"", "   ", "\n\t\n"} {
		_, err := svc.Analyze(context.Background(), 1, code, "")
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Analyze(%q) error = %v, want ErrValidation", code, err)
		}
	}

	if completer.calls.Load() != 0 {
		t.Error("empty code must not reach the completion client")
	}
	if len(repo.analyses) != 0 {
		t.Error("empty code must not persist anything")
	}
}

// There is no upper bound on submission size: any non-empty code yields
// exactly one persisted row, large scripts included.
func TestAnalyzeLargeCode(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, &fakeCompleter{})

	code := "# generated\n" + strings.Repeat("print('x')\n", 20000)
	analysis, err := svc.Analyze(context.Background(), 1, code, "big.py")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if analysis.Code != code {
		t.Error("Code should be persisted verbatim regardless of size")
	}
	if len(repo.analyses) != 1 {
		t.Errorf("persisted rows = %d, want exactly 1", len(repo.analyses))
	}
}

// All-or-nothing: if the college-level call fails after the elementary one
// succeeds, nothing is persisted.
func TestAnalyzeSecondCallFails(t *testing.T) {
	repo := newFakeAnalysisRepo()
	completer := &fakeCompleter{failOn: "컴퓨터 공학과"}
	svc := newTestService(repo, completer)

	_, err := svc.Analyze(context.Background(), 1, "print('hi')", "")
	if err == nil {
		t.Fatal("Analyze() should fail when either completion call fails")
	}
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("Analyze() error = %v, want ErrUpstream", err)
	}
	if len(repo.analyses) != 0 {
		t.Errorf("persisted rows = %d, want 0 after completion failure", len(repo.analyses))
	}
}

func TestAnalyzeFirstCallFails(t *testing.T) {
	repo := newFakeAnalysisRepo()
	completer := &fakeCompleter{failOn: "초등학교"}
	svc := newTestService(repo, completer)

	_, err := svc.Analyze(context.Background(), 1, "print('hi')", "")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("Analyze() error = %v, want ErrUpstream", err)
	}
	if len(repo.analyses) != 0 {
		t.Error("nothing may persist when a completion call fails")
	}
}

func TestAnalyzeSaveFails(t *testing.T) {
	repo := newFakeAnalysisRepo()
	repo.saveErr = apperror.Unavailable("save analysis")
	svc := newTestService(repo, &fakeCompleter{})

	_, err := svc.Analyze(context.Background(), 1, "print('hi')", "")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Analyze() error = %v, want ErrUnavailable surfaced", err)
	}
}

// =========================================================================
// HISTORY / GET TESTS
// =========================================================================

func TestHistoryOrder(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, &fakeCompleter{})
	ctx := context.Background()

	for _, code := range []string{"print('A')", "print('B')", "print('C')"} {
		if _, err := svc.Analyze(ctx, 1, code, ""); err != nil {
			t.Fatalf("Analyze(%q) error = %v", code, err)
		}
	}

	history, err := svc.History(ctx, 1)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len = %d, want 3", len(history))
	}
	for i, want := range []string{"print('A')", "print('B')", "print('C')"} {
		if history[i].Code != want {
			t.Errorf("history[%d].Code = %q, want %q (submission order)", i, history[i].Code, want)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	svc := newTestService(newFakeAnalysisRepo(), &fakeCompleter{})

	history, err := svc.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("History() should never fail for a fresh user, got %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len = %d, want 0", len(history))
	}
}

func TestGetByID(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, &fakeCompleter{})
	ctx := context.Background()

	saved, err := svc.Analyze(ctx, 1, "print('hi')", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	found, err := svc.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.ID != saved.ID {
		t.Errorf("ID = %d, want %d", found.ID, saved.ID)
	}
}

func TestGetByIDInvalid(t *testing.T) {
	svc := newTestService(newFakeAnalysisRepo(), &fakeCompleter{})

	_, err := svc.GetByID(context.Background(), 0)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GetByID(0) error = %v, want ErrValidation", err)
	}
}
