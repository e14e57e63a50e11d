package pipeline

import (
	"context"
	"errors"

	"letterchain/pkg/models"
)

// ErrFeedbackInput is returned when the feedback pass is missing its prior
// letter or the feedback text
var ErrFeedbackInput = errors.New("pipeline: feedback pass requires a prior letter and feedback text")

// ProcessFeedback runs a single revision round driven by user feedback on a
// previously generated letter. The job and resume are re-parsed (normally
// cache hits from the original run), the generator receives the feedback
// and the prior draft as revision directives, and the validator scores the
// new draft once. There is no revision loop: the user judges the result.
func (w *Workflow) ProcessFeedback(ctx context.Context, s State) (*Result, error) {
	if s.PriorLetter == "" || s.UserFeedback == "" {
		return nil, ErrFeedbackInput
	}

	s = w.deps.parseResume(ctx, s)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s = w.deps.parseJob(ctx, s)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s = w.deps.matchExperiences(ctx, s)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.PriorIssues = feedbackRevisionContext(s.PriorLetter, s.UserFeedback)
	s = w.deps.generateLetter(ctx, s)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s = w.deps.validateLetter(ctx, s)

	analysis := &models.FeedbackAnalysis{
		FeedbackReceived: s.UserFeedback,
		Issues:           []string{},
	}
	if s.ValidationResult != nil {
		analysis.Issues = s.ValidationResult.Issues
		analysis.Score = s.ValidationResult.Score
	}
	if analysis.Issues == nil {
		analysis.Issues = []string{}
	}

	s.FeedbackProcessed = true
	s.FeedbackAnalysis = analysis
	s.Metadata.Iterations = s.GenerationCount
	s.Metadata.ValidationPassed = s.ValidationResult != nil && s.ValidationResult.Valid

	return &Result{Outcome: OutcomeSuccess, State: s}, nil
}
