package models

// GenerateRequest is the JSON body variant for cover letter generation.
// File uploads go through the multipart form path instead.
type GenerateRequest struct {
	ResumeText string `json:"resume_text" validate:"required,min=100"`
	JobText    string `json:"job_text" validate:"required,min=100"`
	Tone       Tone   `json:"tone" validate:"omitempty,oneof=professional emotional confident creative"`
}

// FeedbackRequest asks for a revision of an existing letter based on user feedback
type FeedbackRequest struct {
	CoverLetter  string `json:"cover_letter" validate:"required,min=50"`
	UserFeedback string `json:"user_feedback" validate:"required,min=10"`
	ResumeText   string `json:"resume_text" validate:"required"`
	JobText      string `json:"job_text" validate:"required"`
	Tone         Tone   `json:"tone" validate:"omitempty,oneof=professional emotional confident creative"`
}
