package pipeline

import (
	"letterchain/pkg/models"
)

// Stage identifies one step of the generation workflow
type Stage string

const (
	StageValidateInput    Stage = "validate_input"
	StageParseResume      Stage = "parse_resume"
	StageParseJob         Stage = "parse_job"
	StageMatchExperiences Stage = "match_experiences"
	StageGenerateLetter   Stage = "generate_letter"
	StageValidateLetter   Stage = "validate_letter"
	StageFinish           Stage = "finish"
	StageReject           Stage = "reject"
)

// State carries everything the workflow accumulates across stages. Stages
// take a State by value and return a modified copy; no stage mutates shared
// data, which keeps runs independent and cheap to snapshot for events.
type State struct {
	// Inputs
	ResumeText string
	JobText    string
	Tone       models.Tone

	// Parsed data
	ResumeInfo *models.ResumeInfo
	JobInfo    *models.JobInfo
	UserName   string

	// Processing data. MatchedExperiences uses nil to mean "matcher has not
	// run"; an empty non-nil slice is a legitimate no-matches result and
	// satisfies the downstream guard.
	MatchedExperiences []models.MatchedExperience
	CoverLetter        string
	GenerationCount    int

	// Letter validation
	ValidationResult *models.ValidationResult
	PriorIssues      []string

	// Input validation
	InputValidation  *models.InputValidation
	ValidationFailed bool
	ValidationError  *models.ValidationDetail

	// Feedback pass
	UserFeedback      string
	PriorLetter       string
	FeedbackProcessed bool
	FeedbackAnalysis  *models.FeedbackAnalysis

	Metadata models.GenerationMetadata
}

// OutcomeKind discriminates the three ways a run can end
type OutcomeKind int

const (
	// OutcomeSuccess means a letter was produced. The letter may still have
	// failed validation if the revision cap was hit; check
	// Metadata.ValidationPassed.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeInputRejected means the input gate refused one or both
	// documents. No letter exists and no parsing was attempted.
	OutcomeInputRejected
	// OutcomeFailed means the workflow itself broke: cancellation, a stage
	// error, or a panic.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInputRejected:
		return "input_rejected"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the terminal payload of a workflow run
type Result struct {
	Outcome OutcomeKind
	State   State
	Err     error
}

// Rejection returns the input gate's issue lists. Only meaningful when
// Outcome is OutcomeInputRejected.
func (r *Result) Rejection() models.ValidationDetail {
	if r.State.ValidationError != nil {
		return *r.State.ValidationError
	}
	return models.ValidationDetail{}
}
