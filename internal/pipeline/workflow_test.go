package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letterchain/internal/llm"
	"letterchain/pkg/models"
)

const sampleResume = `Jane Doe
jane.doe@example.com | 555-0100

EXPERIENCE
Software Engineer, Initech (2019-2024)
Built data pipelines in Go and Python, led a team of three.

EDUCATION
BSc Computer Science, State University, 2019

SKILLS
Go, Python, SQL, distributed systems, mentoring`

const sampleJob = `Senior Backend Engineer at Acme Corp
Location: Remote

Responsibilities:
- Design and operate high-throughput services
- Mentor junior engineers

Requirements:
- 3+ years backend experience
- Strong Go or Python
- Experience with distributed systems`

const validGateResponse = `{"resume_valid": true, "job_valid": true, "resume_issues": [], "job_issues": []}`

const parsedResumeResponse = `{
  "name": "Jane Doe",
  "email": "jane.doe@example.com",
  "experience": [{"title": "Software Engineer", "company": "Initech", "duration": "2019-2024", "description": "Built data pipelines in Go and Python"}],
  "education": [{"degree": "BSc Computer Science", "institution": "State University", "year": "2019"}],
  "skills": ["Go", "Python", "SQL"]
}`

const parsedJobResponse = `{
  "title": "Senior Backend Engineer",
  "company": "Acme Corp",
  "location": "Remote",
  "requirements": ["3+ years backend experience", "Strong Go or Python"],
  "responsibilities": ["Design and operate high-throughput services"],
  "qualifications": []
}`

const matchedResponse = `{"matched_experiences": [{"experience_type": "work", "title": "Software Engineer", "description": "Built data pipelines in Go", "relevance_score": 0.9, "transferable_skills": ["Go", "distributed systems"]}]}`

const draftLetter = "Dear Hiring Manager at Acme Corp,\n\nI am excited to apply for the Senior Backend Engineer role...\n\nSincerely, Jane Doe"

// scriptedModels dispatches on role and prompt shape, recording every call
type scriptedModels struct {
	mu    sync.Mutex
	calls []scriptedCall

	onValidateInput  func(n int) (string, error)
	onParseResume    func(n int) (string, error)
	onParseJob       func(n int) (string, error)
	onMatch          func(n int) (string, error)
	onGenerate       func(n int, prompt string) (string, error)
	onValidateLetter func(n int) (string, error)
}

type scriptedCall struct {
	op     string
	prompt string
}

func (m *scriptedModels) Invoke(ctx context.Context, role string, prompt string) (string, error) {
	op := classifyPrompt(role, prompt)
	m.mu.Lock()
	m.calls = append(m.calls, scriptedCall{op: op, prompt: prompt})
	n := m.countLocked(op)
	m.mu.Unlock()

	switch op {
	case "validate_input":
		return m.onValidateInput(n)
	case "parse_resume":
		return m.onParseResume(n)
	case "parse_job":
		return m.onParseJob(n)
	case "match":
		return m.onMatch(n)
	case "generate":
		return m.onGenerate(n, prompt)
	case "validate_letter":
		return m.onValidateLetter(n)
	}
	return "", errors.New("unrecognized prompt")
}

func classifyPrompt(role, prompt string) string {
	switch role {
	case llm.RoleClassifier:
		return "validate_input"
	case llm.RoleWriter:
		return "generate"
	}
	switch {
	case strings.Contains(prompt, "resume parser"):
		return "parse_resume"
	case strings.Contains(prompt, "job description parser"):
		return "parse_job"
	case strings.Contains(prompt, "matching candidate experiences"):
		return "match"
	case strings.Contains(prompt, "QA assistant"):
		return "validate_letter"
	}
	return "unknown"
}

func (m *scriptedModels) countLocked(op string) int {
	n := 0
	for _, c := range m.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (m *scriptedModels) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(op)
}

func (m *scriptedModels) prompts(op string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.op == op {
			out = append(out, c.prompt)
		}
	}
	return out
}

// happyModels returns a provider scripted for a clean single-pass run
func happyModels() *scriptedModels {
	return &scriptedModels{
		onValidateInput:  respond(validGateResponse),
		onParseResume:    respond(parsedResumeResponse),
		onParseJob:       respond(parsedJobResponse),
		onMatch:          respond(matchedResponse),
		onGenerate:       func(n int, prompt string) (string, error) { return draftLetter, nil },
		onValidateLetter: respond(`{"valid": true, "issues": [], "score": 0.95}`),
	}
}

func respond(body string) func(int) (string, error) {
	return func(int) (string, error) { return body, nil }
}

func initialState() State {
	return State{ResumeText: sampleResume, JobText: sampleJob, Tone: models.ToneProfessional}
}

func TestWorkflowHappyPath(t *testing.T) {
	m := happyModels()
	w := NewWorkflow(&Deps{Models: m})

	result := w.Run(context.Background(), initialState())
	require.NotNil(t, result)
	require.NoError(t, result.Err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)

	s := result.State
	assert.Equal(t, draftLetter, s.CoverLetter)
	assert.Equal(t, "Jane Doe", s.UserName)
	require.NotNil(t, s.JobInfo)
	assert.Equal(t, "Acme Corp", s.JobInfo.Company)
	assert.Equal(t, "Senior Backend Engineer", s.JobInfo.Title)
	require.Len(t, s.MatchedExperiences, 1)
	assert.Equal(t, 1, s.Metadata.Iterations)
	assert.True(t, s.Metadata.ValidationPassed)
	assert.GreaterOrEqual(t, s.Metadata.DurationMS, int64(0))
	assert.Equal(t, 1, m.count("generate"))
}

func TestWorkflowInputRejection(t *testing.T) {
	m := happyModels()
	m.onValidateInput = respond(`{"resume_valid": false, "job_valid": true, "resume_issues": ["Appears to be random text, not a resume"], "job_issues": []}`)
	w := NewWorkflow(&Deps{Models: m})

	result := w.Run(context.Background(), initialState())
	require.NotNil(t, result)
	assert.Equal(t, OutcomeInputRejected, result.Outcome)
	assert.NoError(t, result.Err)

	rejection := result.Rejection()
	assert.Equal(t, []string{"Appears to be random text, not a resume"}, rejection.ResumeIssues)
	assert.Empty(t, rejection.JobIssues)

	assert.Zero(t, m.count("parse_resume"), "rejected input must never reach the parsers")
	assert.Zero(t, m.count("parse_job"))
	assert.Zero(t, m.count("generate"))
}

func TestWorkflowMissingStateRoutesToError(t *testing.T) {
	m := happyModels()
	w := NewWorkflow(&Deps{Models: m})
	// Swallow the job parser's output so JobInfo is still nil when its
	// guard runs.
	w.stages[StageParseJob] = func(ctx context.Context, s State) State { return s }

	result := w.Run(context.Background(), initialState())
	require.NotNil(t, result)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), string(StageParseJob))

	assert.Zero(t, m.count("match"), "downstream stages must not run on incomplete state")
	assert.Zero(t, m.count("generate"))
}

func TestWorkflowRevisionLoopFeedsIssuesForward(t *testing.T) {
	m := happyModels()
	m.onValidateLetter = func(n int) (string, error) {
		if n == 1 {
			return `{"valid": false, "issues": ["Letter does not mention the company name"], "score": 0.4}`, nil
		}
		return `{"valid": true, "issues": [], "score": 0.9}`, nil
	}
	w := NewWorkflow(&Deps{Models: m})

	result := w.Run(context.Background(), initialState())
	require.NotNil(t, result)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 2, result.State.Metadata.Iterations)
	assert.True(t, result.State.Metadata.ValidationPassed)
	assert.Nil(t, result.State.PriorIssues)

	prompts := m.prompts("generate")
	require.Len(t, prompts, 2)
	assert.NotContains(t, prompts[0], "previous draft was rejected")
	assert.Contains(t, prompts[1], "The previous draft was rejected for the following reasons")
	assert.Contains(t, prompts[1], "- Letter does not mention the company name")
}

func TestWorkflowRevisionCap(t *testing.T) {
	m := happyModels()
	m.onValidateLetter = respond(`{"valid": false, "issues": ["Still too generic"], "score": 0.3}`)
	w := NewWorkflow(&Deps{Models: m})

	result := w.Run(context.Background(), initialState())
	require.NotNil(t, result)

	// The last draft is kept even though validation never passed.
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, draftLetter, result.State.CoverLetter)
	assert.False(t, result.State.Metadata.ValidationPassed)
	assert.Equal(t, 4, m.count("generate"), "one initial draft plus three revisions")
	assert.Equal(t, 4, result.State.Metadata.Iterations)
}

func TestWorkflowIssuesReplacedNotAccumulated(t *testing.T) {
	m := happyModels()
	m.onValidateLetter = func(n int) (string, error) {
		switch n {
		case 1:
			return `{"valid": false, "issues": ["issue A"], "score": 0.3}`, nil
		case 2:
			return `{"valid": false, "issues": ["issue B"], "score": 0.4}`, nil
		}
		return `{"valid": true, "issues": [], "score": 0.9}`, nil
	}
	w := NewWorkflow(&Deps{Models: m})

	result := w.Run(context.Background(), initialState())
	require.Equal(t, OutcomeSuccess, result.Outcome)

	prompts := m.prompts("generate")
	require.Len(t, prompts, 3)
	assert.Contains(t, prompts[1], "issue A")
	assert.Contains(t, prompts[2], "issue B")
	assert.NotContains(t, prompts[2], "issue A", "a new verdict replaces prior issues")
}

func TestWorkflowCancellation(t *testing.T) {
	m := happyModels()
	w := NewWorkflow(&Deps{Models: m})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := w.Run(ctx, initialState())
	require.NotNil(t, result)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Zero(t, m.count("validate_input"))
}

func TestWorkflowEmitsEvents(t *testing.T) {
	m := happyModels()
	w := NewWorkflow(&Deps{Models: m})

	var events []Event
	result := w.RunWithEvents(context.Background(), initialState(), func(ev Event) {
		events = append(events, ev)
	})
	require.Equal(t, OutcomeSuccess, result.Outcome)

	// Six stages, started+completed each, plus one terminal event.
	require.Len(t, events, 13)
	assert.Equal(t, StageValidateInput, events[0].Stage)
	assert.Equal(t, EventStageStarted, events[0].Status)

	last := events[len(events)-1]
	assert.Equal(t, EventTerminal, last.Status)
	assert.Equal(t, StageFinish, last.Stage)
	assert.Equal(t, "success", last.Outcome)
}

func TestWorkflowGateOutageRejects(t *testing.T) {
	m := happyModels()
	m.onValidateInput = func(int) (string, error) { return "", errors.New("backend down") }
	w := NewWorkflow(&Deps{Models: m})

	result := w.Run(context.Background(), initialState())
	assert.Equal(t, OutcomeInputRejected, result.Outcome)
	assert.Zero(t, m.count("parse_resume"))
}
