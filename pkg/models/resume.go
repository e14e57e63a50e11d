package models

// ResumeInfo represents structured resume information extracted by the parser
type ResumeInfo struct {
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	Skills     []string          `json:"skills"`
	Summary    string            `json:"summary,omitempty"`
}

// ExperienceEntry represents a single work experience on a resume
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry represents a single education record on a resume
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// FallbackResumeInfo is the deterministic stand-in written when resume
// parsing fails; the pipeline proceeds degraded rather than aborting
func FallbackResumeInfo() *ResumeInfo {
	return &ResumeInfo{
		Name:       "Candidate",
		Experience: []ExperienceEntry{},
		Education:  []EducationEntry{},
		Skills:     []string{},
	}
}
