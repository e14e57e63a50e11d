package pipeline

import (
	"context"

	"letterchain/internal/llm"
	"letterchain/internal/logging"
	"letterchain/pkg/models"
)

// Completer is the model surface the stages need. *llm.Invoker satisfies it.
type Completer interface {
	Invoke(ctx context.Context, role string, prompt string) (string, error)
}

// ParseCache memoizes parse results keyed by document content. Misses and
// backend errors look the same to the stages; the cache is an accelerator,
// never a correctness dependency.
type ParseCache interface {
	GetResume(ctx context.Context, resumeText string) (*models.ResumeInfo, bool)
	SetResume(ctx context.Context, resumeText string, info *models.ResumeInfo)
	GetJob(ctx context.Context, jobText string) (*models.JobInfo, bool)
	SetJob(ctx context.Context, jobText string, info *models.JobInfo)
}

// Deps carries the collaborators shared by all stages. Cache may be nil,
// which disables memoization.
type Deps struct {
	Models Completer
	Cache  ParseCache
	Logger logging.Logger
}

func (d *Deps) logger() logging.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.GetGlobalLogger()
}

// StageFunc is one workflow step. Stages absorb model failures into
// deterministic fallbacks and record the degradation in the state; only the
// engine decides whether a run fails.
type StageFunc func(ctx context.Context, s State) State

// validateInput gates both documents through the classifier. A failure to
// reach the model is treated as a rejection, not a degraded pass: nothing
// downstream should run on unvetted input.
func (d *Deps) validateInput(ctx context.Context, s State) State {
	prompt := inputValidationPrompt(s.ResumeText, s.JobText)

	response, err := d.Models.Invoke(ctx, llm.RoleClassifier, prompt)
	if err != nil {
		d.logger().Error("Input validation failed", map[string]interface{}{"error": err.Error()})
		s.ValidationFailed = true
		s.ValidationError = &models.ValidationDetail{
			ResumeIssues: []string{"Input validation could not be completed"},
			JobIssues:    []string{"Input validation could not be completed"},
		}
		return s
	}

	var verdict models.InputValidation
	if err := llm.ExtractInto(response, &verdict); err != nil {
		d.logger().Error("Input validation returned no usable verdict", map[string]interface{}{"error": err.Error()})
		s.ValidationFailed = true
		s.ValidationError = &models.ValidationDetail{
			ResumeIssues: []string{"Input validation could not be completed"},
			JobIssues:    []string{"Input validation could not be completed"},
		}
		return s
	}

	s.InputValidation = &verdict
	if !verdict.ResumeValid || !verdict.JobValid {
		s.ValidationFailed = true
		s.ValidationError = &models.ValidationDetail{
			ResumeIssues: verdict.ResumeIssues,
			JobIssues:    verdict.JobIssues,
		}
	}
	return s
}

// parseResume extracts structured resume data, consulting the cache first.
// On any failure the fallback profile is used so the run can proceed.
func (d *Deps) parseResume(ctx context.Context, s State) State {
	if d.Cache != nil {
		if cached, ok := d.Cache.GetResume(ctx, s.ResumeText); ok {
			s.ResumeInfo = cached
			s.UserName = displayName(cached)
			return s
		}
	}

	response, err := d.Models.Invoke(ctx, llm.RoleAnalyst, resumeParsePrompt(s.ResumeText))
	if err == nil {
		var info models.ResumeInfo
		if err = llm.ExtractInto(response, &info); err == nil {
			s.ResumeInfo = &info
			s.UserName = displayName(&info)
			if d.Cache != nil {
				d.Cache.SetResume(ctx, s.ResumeText, &info)
			}
			return s
		}
	}

	d.logger().Error("Resume parsing failed", map[string]interface{}{"error": err.Error()})
	s.ResumeInfo = models.FallbackResumeInfo()
	s.UserName = s.ResumeInfo.Name
	return s
}

// parseJob extracts structured job data, consulting the cache first
func (d *Deps) parseJob(ctx context.Context, s State) State {
	if d.Cache != nil {
		if cached, ok := d.Cache.GetJob(ctx, s.JobText); ok {
			s.JobInfo = cached
			return s
		}
	}

	response, err := d.Models.Invoke(ctx, llm.RoleAnalyst, jobParsePrompt(s.JobText))
	if err == nil {
		var info models.JobInfo
		if err = llm.ExtractInto(response, &info); err == nil {
			s.JobInfo = &info
			if d.Cache != nil {
				d.Cache.SetJob(ctx, s.JobText, &info)
			}
			return s
		}
	}

	d.logger().Error("Job parsing failed", map[string]interface{}{"error": err.Error()})
	s.JobInfo = models.FallbackJobInfo()
	return s
}

// matchExperiences ranks resume experiences against the job requirements.
// The fallback is an empty but non-nil slice: no matches is a valid result
// and the generator writes a transferable-skills letter from what it has.
func (d *Deps) matchExperiences(ctx context.Context, s State) State {
	prompt := relevanceMatchingPrompt(s.ResumeInfo, s.JobInfo)

	response, err := d.Models.Invoke(ctx, llm.RoleAnalyst, prompt)
	if err == nil {
		var result struct {
			MatchedExperiences []models.MatchedExperience `json:"matched_experiences"`
		}
		if err = llm.ExtractInto(response, &result); err == nil {
			if result.MatchedExperiences == nil {
				result.MatchedExperiences = []models.MatchedExperience{}
			}
			s.MatchedExperiences = result.MatchedExperiences
			return s
		}
	}

	d.logger().Error("Relevance matching failed", map[string]interface{}{"error": err.Error()})
	s.MatchedExperiences = []models.MatchedExperience{}
	return s
}

// generateLetter writes a fresh draft, replacing any previous one wholesale.
// Prior validation issues ride along in the prompt as revision directives.
func (d *Deps) generateLetter(ctx context.Context, s State) State {
	prompt := generationPrompt(s.JobInfo, s.MatchedExperiences, userNameOr(s.UserName), s.Tone, s.PriorIssues)
	s.GenerationCount++

	response, err := d.Models.Invoke(ctx, llm.RoleWriter, prompt)
	if err != nil {
		d.logger().Error("Cover letter generation failed", map[string]interface{}{
			"error":      err.Error(),
			"generation": s.GenerationCount,
		})
		s.CoverLetter = "Error generating cover letter. Please try again."
		return s
	}

	s.CoverLetter = response
	return s
}

// validateLetter judges the current draft. A rejection replaces PriorIssues
// with the fresh issue list; a pass clears them. A validator outage counts
// as a rejection with a technical-error issue so the cap still bounds the
// loop.
func (d *Deps) validateLetter(ctx context.Context, s State) State {
	prompt := letterValidationPrompt(s.CoverLetter, s.JobInfo)

	response, err := d.Models.Invoke(ctx, llm.RoleAnalyst, prompt)
	if err == nil {
		var verdict models.ValidationResult
		if err = llm.ExtractInto(response, &verdict); err == nil {
			s.ValidationResult = &verdict
			if verdict.Valid {
				s.PriorIssues = nil
			} else {
				s.PriorIssues = verdict.Issues
			}
			return s
		}
	}

	d.logger().Error("Cover letter validation failed", map[string]interface{}{"error": err.Error()})
	s.ValidationResult = &models.ValidationResult{
		Valid:  false,
		Issues: []string{"Validation failed due to technical error"},
		Score:  0.0,
	}
	s.PriorIssues = s.ValidationResult.Issues
	return s
}

func displayName(info *models.ResumeInfo) string {
	if info != nil && info.Name != "" {
		return info.Name
	}
	return "Candidate"
}

func userNameOr(name string) string {
	if name != "" {
		return name
	}
	return "Candidate"
}
