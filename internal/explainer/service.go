// Package explainer contains the business logic for generating and
// retrieving code explanations.
//
// The layering follows the rest of the app:
//
//	Handler (HTTP)    → parses requests, writes responses
//	Service (here)    → validates, orchestrates completion + persistence
//	Repository (data) → reads/writes SQLite
//
// The service knows nothing about HTTP and receives both the repository and
// the completion client as interfaces, so tests run it against fakes.
package explainer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gamnamu1/python-code-explainer/internal/apperror"
	"github.com/gamnamu1/python-code-explainer/internal/llm"
	"github.com/gamnamu1/python-code-explainer/internal/model"
	"github.com/gamnamu1/python-code-explainer/internal/repository"
)

// Completer is the slice of the llm.Client this service consumes.
// Tests substitute a fake that returns canned completions.
type Completer interface {
	CreateChatCompletion(ctx context.Context, messages []llm.Message) (*llm.ChatCompletion, error)
}

// Service handles analyze/history operations for one repository and one
// completion client.
type Service struct {
	analyses repository.AnalysisRepository
	llm      Completer
	logger   *slog.Logger
}

// NewService creates a Service. The caller decides which repository and
// completion client implementations to wire in.
func NewService(analyses repository.AnalysisRepository, completer Completer, logger *slog.Logger) *Service {
	return &Service{
		analyses: analyses,
		llm:      completer,
		logger:   logger,
	}
}

// Analyze generates both explanations for the submitted code and persists
// the result as one new analysis row owned by userID.
//
// The two completion calls are independent — neither prompt depends on the
// other's output — so they run concurrently and join. All-or-nothing still
// holds: if either call fails, the group context cancels the other and
// nothing is persisted. The code is stored byte-for-byte as submitted;
// only the emptiness check trims.
func (s *Service) Analyze(ctx context.Context, userID int64, code, fileName string) (*model.CodeAnalysis, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "code must not be empty")
	}

	var elementary, college string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := s.complete(gctx, elementarySystemPrompt, elementaryPrompt(code))
		if err != nil {
			return fmt.Errorf("elementary explanation: %w", err)
		}
		elementary = text
		return nil
	})
	g.Go(func() error {
		text, err := s.complete(gctx, collegeSystemPrompt, collegePrompt(code))
		if err != nil {
			return fmt.Errorf("college explanation: %w", err)
		}
		college = text
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("completion failed — analysis not persisted",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream(err)
	}

	saved, err := s.analyses.SaveAnalysis(ctx, &model.CodeAnalysis{
		UserID:                userID,
		Code:                  code,
		FileName:              fileName,
		ElementaryExplanation: elementary,
		CollegeExplanation:    college,
	})
	if err != nil {
		s.logger.Error("failed to save analysis",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving analysis: %w", err)
	}

	s.logger.Info("analysis created",
		slog.Int64("id", saved.ID),
		slog.Int64("userId", saved.UserID),
		slog.String("fileName", saved.FileName),
	)

	return saved, nil
}

// complete runs one system+user prompt pair and extracts the text of the
// first choice. Non-text content maps to "" (llm.Content's explicit rule);
// that is a valid, saveable explanation per the consumed contract.
func (s *Service) complete(ctx context.Context, system, user string) (string, error) {
	completion, err := s.llm.CreateChatCompletion(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		return "", err
	}
	return completion.FirstText(), nil
}

// History returns the caller's analyses, oldest first. A user with no prior
// submissions gets an empty slice, never an error.
func (s *Service) History(ctx context.Context, userID int64) ([]model.CodeAnalysis, error) {
	analyses, err := s.analyses.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list analyses",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return analyses, nil
}

// GetByID retrieves one analysis. There is deliberately no ownership check:
// any authenticated caller holding a valid id can read it.
func (s *Service) GetByID(ctx context.Context, id int64) (*model.CodeAnalysis, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "analysis id must be positive")
	}
	return s.analyses.GetAnalysisByID(ctx, id)
}
