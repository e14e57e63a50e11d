package models

import "time"

// GenerationMetadata records how a pipeline run went
type GenerationMetadata struct {
	Iterations       int   `json:"iterations"`
	ValidationPassed bool  `json:"validation_passed"`
	DurationMS       int64 `json:"duration_ms"`
}

// CoverLetterResponse is the success payload for cover letter generation
type CoverLetterResponse struct {
	CoverLetter        string              `json:"cover_letter"`
	JobInfo            *JobInfo            `json:"job_info"`
	ResumeInfo         *ResumeInfo         `json:"resume_info"`
	MatchedExperiences []MatchedExperience `json:"matched_experiences"`
	GenerationMetadata GenerationMetadata  `json:"generation_metadata"`
	RequestID          string              `json:"request_id"`
}

// InputRejectedResponse is returned when the input gate rejects a document.
// The caller can fix their documents and retry; this is a 400-class outcome.
type InputRejectedResponse struct {
	ValidationFailed bool             `json:"validation_failed"`
	ValidationError  ValidationDetail `json:"validation_error"`
	RequestID        string           `json:"request_id"`
	Timestamp        time.Time        `json:"timestamp"`
}

// ValidationDetail itemizes why each document was rejected
type ValidationDetail struct {
	ResumeIssues []string `json:"resume_issues,omitempty"`
	JobIssues    []string `json:"job_issues,omitempty"`
}

// FeedbackResponse is the payload for a feedback-driven revision
type FeedbackResponse struct {
	Message          string           `json:"message"`
	ImprovedLetter   string           `json:"improved_letter"`
	FeedbackAnalysis FeedbackAnalysis `json:"feedback_analysis"`
	RequestID        string           `json:"request_id"`
}

// FeedbackAnalysis summarizes how the feedback pass went
type FeedbackAnalysis struct {
	FeedbackReceived string   `json:"feedback_received"`
	Issues           []string `json:"issues"`
	Score            float64  `json:"score"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
