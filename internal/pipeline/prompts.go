package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"letterchain/pkg/models"
)

// Prompt construction for each stage. Each prompt demands JSON-only output
// where the stage consumes structured data; the letter writer is the one
// stage whose raw text response is used verbatim.

const inputValidationSystem = `You are a quality control assistant that validates whether uploaded documents are legitimate resumes and job descriptions.

Return ONLY a JSON object with this structure:
{
  "resume_valid": true/false,
  "job_valid": true/false,
  "resume_issues": ["list of specific problems with resume, if any"],
  "job_issues": ["list of specific problems with job description, if any"]
}

**Resume Validation Criteria:**
- Contains personal information (name, contact details)
- Lists work experience, education, or skills
- Is not random text, code, or unrelated content
- Has reasonable length (at least 100 characters)

**Job Description Validation Criteria:**
- Contains job title and company information
- Lists responsibilities, requirements, or qualifications
- Is not random text, code, or unrelated content
- Has reasonable length (at least 100 characters)

Be strict but fair. If either input is clearly not a resume or job description, mark it as invalid.`

// inputExcerptLimit bounds how much of each document the classifier sees.
// The gate only needs enough text to recognize the document type.
const inputExcerptLimit = 2000

func inputValidationPrompt(resumeText, jobText string) string {
	return fmt.Sprintf("%s\n\n### Resume Text:\n%s...\n\n### Job Description Text:\n%s...",
		inputValidationSystem, excerpt(resumeText, inputExcerptLimit), excerpt(jobText, inputExcerptLimit))
}

func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func systemPrompt(role, instructions string) string {
	return fmt.Sprintf(`You are %s.

%s

You must respond with only the requested information. Do not include any explanations, markdown formatting, or additional text unless specifically requested.`, role, instructions)
}

func resumeParsePrompt(resumeText string) string {
	system := systemPrompt("a professional resume parser", `Extract structured information from the resume. Return ONLY a JSON object with:
- name: string
- email: string (if found)
- phone: string (if found)
- experience: array of objects with title, company, duration, description
- education: array of objects with degree, institution, year
- skills: array of strings
- summary: string (if available)`)
	return fmt.Sprintf("%s\n\nResume:\n%s", system, resumeText)
}

func jobParsePrompt(jobText string) string {
	system := systemPrompt("a professional job description parser", `Extract structured information from the job posting. Return ONLY a JSON object with:
- title: string
- company: string
- location: string (if found)
- requirements: array of strings
- responsibilities: array of strings
- qualifications: array of strings`)
	return fmt.Sprintf("%s\n\nJob Description:\n%s", system, jobText)
}

const relevanceMatchingSystem = `You are an expert at matching candidate experiences to job requirements.

Analyze the resume experiences and job requirements to find the best matches. Focus on transferable skills and relevant experience.

Return ONLY a JSON object with this structure:
{
  "matched_experiences": [
    {
      "experience_type": "work|education|project",
      "title": "string",
      "description": "string",
      "relevance_score": 0.0-1.0,
      "transferable_skills": ["skill1", "skill2"]
    }
  ]
}

Prioritize experiences that demonstrate transferable skills relevant to the job requirements.`

func relevanceMatchingPrompt(resumeInfo *models.ResumeInfo, jobInfo *models.JobInfo) string {
	return fmt.Sprintf("%s\n\n### Resume Info:\n%s\n\n### Job Info:\n%s",
		relevanceMatchingSystem, indentJSON(resumeInfo), indentJSON(jobInfo))
}

func generationPrompt(jobInfo *models.JobInfo, experiences []models.MatchedExperience, userName string, tone models.Tone, priorIssues []string) string {
	system := fmt.Sprintf(`You are a professional writing agent specialized in generating high-quality, concise, and direct cover letters.

Write a 250-350 word cover letter using the information provided.

Requirements:
1. Begin with a formal greeting: e.g., "Dear [Team/Manager] at {company}".
2. Intro paragraph: state the job title, company name, and express clear enthusiasm.
3. Body: highlight 1-2 key experiences that demonstrate **transferable skills** applicable to this role.
4. Closing: reinforce interest, connect to the company's mission, and invite further discussion.
5. End with: "Sincerely, %s"

**CRITICAL HONESTY GUIDELINES:**
- **NEVER fabricate, invent, or stretch experience** - only use information that is explicitly provided
- **Be completely truthful** about the candidate's actual experience and skills
- **Focus on transferable skills** - Show how existing experience applies to the new role
- **Be specific about skills** - Programming, analysis, teamwork, communication, etc.
- **Highlight learning ability** - Demonstrate adaptability and growth mindset
- **Use concrete examples** - Reference specific projects, courses, or experiences from the resume
- **Maintain a %s tone throughout**
- **Be concise and direct, avoiding flowery language**
- **Emphasize potential and transferability** rather than direct experience matches
- **PRIORITIZE HONESTY OVER PERFECTION** - It's better to be honest about limitations than to fabricate experience`,
		userName, tone.Directive())

	prompt := fmt.Sprintf("%s\n\n### Job Description:\n%s\n\n### Matched Experiences:\n%s",
		system, indentJSON(jobInfo), indentJSON(experiences))

	if len(priorIssues) > 0 {
		var b strings.Builder
		for _, issue := range priorIssues {
			b.WriteString("- ")
			b.WriteString(issue)
			b.WriteString("\n")
		}
		prompt += fmt.Sprintf("\n\nThe previous draft was rejected for the following reasons. Please address them:\n%s",
			strings.TrimRight(b.String(), "\n"))
	}

	return prompt
}

const letterValidationSystem = `You are a strict and intelligent QA assistant for AI-generated cover letters.

Evaluate the letter using these criteria:

1. **HONESTY AND TRUTHFULNESS** - Does the letter honestly represent the candidate's experience without ANY fabrication?
2. **Company and Job Mention** - Does it clearly mention the company name and job title?
3. **Transferable Skills Focus** - Does it effectively connect the candidate's background to the job through transferable skills?
4. **Tone and Professionalism** - Is the tone appropriate, professional, and confident?
5. **Length and Structure** - Is it well-structured and appropriately sized (250-350 words)?

Return a JSON object with:
- "valid": true or false
- "issues": list of concrete problems if found
- "score": quality score from 0.0 to 1.0

**CRITICAL HONESTY RULES**:
- **REJECT letters** that make ANY false claims about experience, skills, or qualifications
- **ACCEPT letters** that are honest about limitations and focus on transferable skills
- **PRIORITIZE HONESTY OVER PERFECTION** - A truthful letter with gaps is better than a fabricated perfect letter`

func letterValidationPrompt(letter string, jobInfo *models.JobInfo) string {
	return fmt.Sprintf("%s\n\n### Cover Letter:\n%s\n\n### Job Info:\n%s",
		letterValidationSystem, letter, indentJSON(jobInfo))
}

func feedbackRevisionContext(priorLetter, feedback string) []string {
	return []string{
		fmt.Sprintf("The candidate reviewed the previous draft and asked for changes: %s", feedback),
		fmt.Sprintf("Previous draft for reference:\n%s", priorLetter),
	}
}

func indentJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
