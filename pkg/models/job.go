package models

// JobInfo represents structured job posting information extracted by the parser
type JobInfo struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location,omitempty"`
	Requirements     []string `json:"requirements"`
	Responsibilities []string `json:"responsibilities"`
	Qualifications   []string `json:"qualifications"`
}

// FallbackJobInfo is the deterministic stand-in written when job parsing fails
func FallbackJobInfo() *JobInfo {
	return &JobInfo{
		Title:            "Position",
		Company:          "Company",
		Requirements:     []string{},
		Responsibilities: []string{},
		Qualifications:   []string{},
	}
}

// MatchedExperience is one candidate experience matched to the job's
// requirements, ranked by transferability
type MatchedExperience struct {
	ExperienceType     string   `json:"experience_type"` // "work", "education", "project"
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	RelevanceScore     float64  `json:"relevance_score"`
	TransferableSkills []string `json:"transferable_skills"`
}

// ValidationResult is the letter validator's verdict. Issues must be concrete
// enough to be echoed directly into the next generation prompt.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
	Score  float64  `json:"score"`
}

// InputValidation is the input gate's classification of both documents
type InputValidation struct {
	ResumeValid  bool     `json:"resume_valid"`
	JobValid     bool     `json:"job_valid"`
	ResumeIssues []string `json:"resume_issues"`
	JobIssues    []string `json:"job_issues"`
}
